package ports

import (
	"context"

	"github.com/caregate/caregate/pkg/domain"
)

// PreChecker decides whether a query is safe to answer with the local
// generation model. Rule-based or model-based; external collaborator.
type PreChecker interface {
	Check(ctx context.Context, req domain.LocalGenerationRequest) (*domain.PreCheckResult, error)
}

// Generator produces a draft answer from the local generation model.
type Generator interface {
	Generate(ctx context.Context, req domain.LocalGenerationRequest, chunks []domain.RetrievedChunk) (*domain.LocalGenerationResponse, error)
}

// PostChecker verifies a generated draft across the safety and quality
// dimensions.
type PostChecker interface {
	Verify(ctx context.Context, req domain.LocalGenerationRequest, gen domain.LocalGenerationResponse) (*domain.PostCheckResult, error)
}

// Retriever returns ranked text chunks for a query from the vector store.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}
