// Package rules provides rule-based pre-check and post-check classifiers.
// They are the conservative default collaborators for the safety sandwich;
// model-based classifiers can replace them behind the same ports.
package rules

import (
	"context"
	"strings"
	"time"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// blockedTerms reject a query outright: anything suggesting an acute
// emergency or dosing decision is not served by the local model.
var blockedTerms = []string{
	"chest pain", "can't breathe", "cannot breathe", "unconscious",
	"overdose", "suicide", "kill myself", "seizure", "stroke",
	"severe bleeding", "anaphylaxis",
}

// reviewTerms do not block, but route rejection toward human review
// instead of the external API.
var reviewTerms = []string{
	"off-label", "experimental", "clinical trial",
}

// highRiskIntents are never eligible for local generation.
var highRiskIntents = map[string]bool{
	"dosing_decision": true,
	"diagnosis":       true,
	"emergency":       true,
}

// PreChecker is the rule-based pre-generation gate.
type PreChecker struct {
	now func() time.Time
}

var _ ports.PreChecker = (*PreChecker)(nil)

// NewPreChecker creates the rule-based pre-checker.
func NewPreChecker() *PreChecker {
	return &PreChecker{now: time.Now}
}

// Check judges whether the query is safe for local generation.
func (p *PreChecker) Check(ctx context.Context, req domain.LocalGenerationRequest) (*domain.PreCheckResult, error) {
	res := &domain.PreCheckResult{
		Method:      "rule_based",
		PredictedAt: p.now(),
	}

	query := strings.ToLower(req.Query)

	for _, term := range blockedTerms {
		if strings.Contains(query, term) {
			res.IsSafeForLocalGeneration = false
			res.Confidence = 0.95
			res.Reason = "query matches emergency/high-acuity term"
			res.RiskFactors = append(res.RiskFactors, term)
			res.RecommendedAction = domain.RecommendEscalate
			return res, nil
		}
	}

	if highRiskIntents[req.Intent] || strings.EqualFold(req.RiskLevel, "high") {
		res.IsSafeForLocalGeneration = false
		res.Confidence = 0.9
		res.Reason = "intent or risk level excluded from local generation"
		res.RecommendedAction = domain.RecommendEscalate
		return res, nil
	}

	for _, term := range reviewTerms {
		if strings.Contains(query, term) {
			res.IsSafeForLocalGeneration = false
			res.Confidence = 0.8
			res.Reason = "query requires human review"
			res.RiskFactors = append(res.RiskFactors, term)
			res.RecommendedAction = domain.RecommendFlagForReview
			return res, nil
		}
	}

	res.IsSafeForLocalGeneration = true
	res.Confidence = 0.85
	res.Reason = "no risk terms matched"
	return res, nil
}
