package rules

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// contraindicationPhrases in a draft indicate directive advice the local
// model must not give.
var contraindicationPhrases = []string{
	"stop taking your medication",
	"double your dose",
	"no need to see a doctor",
	"ignore your symptoms",
}

// uncertaintyPhrases indicate the draft acknowledges its own limits.
var uncertaintyPhrases = []string{
	"consult", "your doctor", "healthcare provider", "may", "can vary", "not a substitute",
}

// escalationPhrases indicate the draft points acute cases at real care.
var escalationPhrases = []string{
	"seek immediate", "call 911", "emergency", "urgent care",
}

// phiPatterns catch obvious identifier leakage in drafts: SSN-shaped
// numbers, MRN markers, phone numbers.
var phiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`(?i)\bMRN[:#]?\s*\d+`),
	regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
}

// PostChecker is the rule-based draft verifier.
type PostChecker struct {
	now func() time.Time
}

var _ ports.PostChecker = (*PostChecker)(nil)

// NewPostChecker creates the rule-based post-checker.
func NewPostChecker() *PostChecker {
	return &PostChecker{now: time.Now}
}

// Verify checks the draft across the safety and quality dimensions.
func (p *PostChecker) Verify(ctx context.Context, req domain.LocalGenerationRequest, gen domain.LocalGenerationResponse) (*domain.PostCheckResult, error) {
	text := strings.ToLower(gen.ResponseText)

	safety := domain.SafetyCheck{
		NoContraindications:    true,
		AppropriateUncertainty: containsAny(text, uncertaintyPhrases),
		ProperEscalation:       true,
		NoPHIExposure:          true,
	}

	for _, phrase := range contraindicationPhrases {
		if strings.Contains(text, phrase) {
			safety.NoContraindications = false
			safety.Issues = append(safety.Issues, domain.CheckIssue{
				Severity:    "critical",
				Description: "draft contains directive advice: " + phrase,
			})
		}
	}
	if !safety.AppropriateUncertainty {
		safety.Issues = append(safety.Issues, domain.CheckIssue{
			Severity:    "moderate",
			Description: "draft does not acknowledge uncertainty or advise professional consultation",
		})
	}
	if strings.EqualFold(req.RiskLevel, "medium") && !containsAny(text, escalationPhrases) {
		safety.ProperEscalation = false
		safety.Issues = append(safety.Issues, domain.CheckIssue{
			Severity:    "moderate",
			Description: "medium-risk query answered without escalation guidance",
		})
	}
	for _, pat := range phiPatterns {
		if pat.MatchString(gen.ResponseText) {
			safety.NoPHIExposure = false
			safety.Issues = append(safety.Issues, domain.CheckIssue{
				Severity:    "critical",
				Description: "draft contains an identifier-shaped token",
			})
			break
		}
	}

	quality := domain.QualityCheck{
		CoherenceScore:          coherenceScore(gen.ResponseText),
		TerminologyAppropriate:  true,
		LimitationsAcknowledged: len(gen.IdentifiedLimitations) > 0 || safety.AppropriateUncertainty,
	}
	if quality.CoherenceScore < 0.5 {
		quality.Issues = append(quality.Issues, domain.CheckIssue{
			Severity:    "moderate",
			Description: "draft too short or repetitive to be coherent",
		})
	}

	result := &domain.PostCheckResult{
		Safety:       safety,
		Quality:      quality,
		QualityScore: qualityScore(safety, quality),
		CheckedAt:    p.now(),
	}
	result.IsVerified = safety.NoContraindications && safety.NoPHIExposure &&
		safety.ProperEscalation && quality.CoherenceScore >= 0.5
	result.RecommendedAction = recommend(safety, quality)
	return result, nil
}

func recommend(safety domain.SafetyCheck, quality domain.QualityCheck) string {
	switch {
	case !safety.NoContraindications || !safety.NoPHIExposure:
		return domain.RecommendEscalate
	case !safety.ProperEscalation:
		return domain.RecommendFlagForReview
	case quality.CoherenceScore < 0.5 || !safety.AppropriateUncertainty:
		return domain.RecommendRevise
	default:
		return domain.RecommendApprove
	}
}

func qualityScore(safety domain.SafetyCheck, quality domain.QualityCheck) float64 {
	score := quality.CoherenceScore
	if safety.AppropriateUncertainty {
		score += 0.2
	}
	if quality.LimitationsAcknowledged {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// coherenceScore is a cheap proxy: long enough, with sentence structure,
// without heavy repetition.
func coherenceScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) < 10 {
		return 0.2
	}

	unique := make(map[string]bool, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = true
	}
	ratio := float64(len(unique)) / float64(len(words))

	score := 0.5 + ratio/2
	if score > 1 {
		score = 1
	}
	return score
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
