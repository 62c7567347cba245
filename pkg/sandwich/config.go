package sandwich

import "time"

// StageConfig configures one safety stage.
type StageConfig struct {
	Enabled             bool          `yaml:"enabled"`
	StrictMode          bool          `yaml:"strict_mode"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	QualityThreshold    float64       `yaml:"quality_threshold"`
	Timeout             time.Duration `yaml:"timeout"`
}

// GenerationConfig configures the local generation call.
type GenerationConfig struct {
	ModelID     string        `yaml:"model_id"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TopP        float64       `yaml:"top_p"`
	IncludeRAG  bool          `yaml:"include_rag"`
	TopK        int           `yaml:"top_k"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OrchestratorConfig configures final-decision behavior.
type OrchestratorConfig struct {
	EnableFallback             bool    `yaml:"enable_fallback"`
	FallbackToAPIOnAnyFailure  bool    `yaml:"fallback_to_api_on_any_failure"`
	EscalationThreshold        float64 `yaml:"escalation_threshold"`
}

// Config is the full safety sandwich configuration.
type Config struct {
	Enabled      bool               `yaml:"enabled"`
	ShadowMode   bool               `yaml:"shadow_mode"`
	PreCheck     StageConfig        `yaml:"pre_check"`
	PostCheck    StageConfig        `yaml:"post_check"`
	Generation   GenerationConfig   `yaml:"generation"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// DefaultConfig returns a conservative production default: the sandwich is
// on, shadow mode is off, and any stage failure escalates to the API.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		PreCheck: StageConfig{
			Enabled:             true,
			ConfidenceThreshold: 0.7,
			Timeout:             5 * time.Second,
		},
		PostCheck: StageConfig{
			Enabled:          true,
			QualityThreshold: 0.6,
			Timeout:          10 * time.Second,
		},
		Generation: GenerationConfig{
			ModelID:   "local-clinical-7b",
			MaxTokens: 1024,
			TopK:      5,
			Timeout:   30 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			EnableFallback:            true,
			FallbackToAPIOnAnyFailure: true,
			EscalationThreshold:       0.5,
		},
	}
}
