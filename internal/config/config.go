// Package config provides configuration loading and management for planloom.
package config

// Config is the root configuration.
type Config struct {
	LLM      LLMConfig      `json:"llm"      mapstructure:"llm"`
	Pipeline PipelineConfig `json:"pipeline" mapstructure:"pipeline"`
	Budgets  Budgets        `json:"budgets"  mapstructure:"budgets"`
}

// LLMConfig selects and configures the text-generation provider.
type LLMConfig struct {
	Provider       string `json:"provider"                  mapstructure:"provider"`
	Model          string `json:"model"                     mapstructure:"model"`
	BaseURL        string `json:"base_url,omitempty"        mapstructure:"base_url"`
	APIKey         string `json:"api_key,omitempty"         mapstructure:"api_key"`
	APIKeyEnv      string `json:"api_key_env,omitempty"     mapstructure:"api_key_env"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// PipelineConfig tunes the document-intelligence pipeline.
type PipelineConfig struct {
	SamplePages         int      `json:"sample_pages,omitempty"         mapstructure:"sample_pages"`
	MaxPageChars        int      `json:"max_page_chars,omitempty"       mapstructure:"max_page_chars"`
	ConfidenceThreshold float64  `json:"confidence_threshold,omitempty" mapstructure:"confidence_threshold"`
	OverlapThreshold    float64  `json:"overlap_threshold,omitempty"    mapstructure:"overlap_threshold"`
	ConverterCmd        []string `json:"converter_cmd,omitempty"        mapstructure:"converter_cmd"`
}

// Budgets defines run limits.
type Budgets struct {
	MaxIterations int `json:"max_iterations" mapstructure:"max_iterations"`
}
