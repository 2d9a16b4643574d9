package config

import (
	"strings"
	"testing"
)

func validSettings() map[string]any {
	return map[string]any{
		"llm": map[string]any{
			"provider":        ProviderOpenAI,
			"model":           "gpt-5",
			"api_key_env":     "OPENAI_API_KEY",
			"timeout_seconds": 120,
		},
		"pipeline": map[string]any{
			"sample_pages":         3,
			"max_page_chars":       4000,
			"confidence_threshold": 0.5,
			"overlap_threshold":    0.5,
			"converter_cmd":        []any{"pdftotext", "-layout"},
		},
		"budgets": map[string]any{
			"max_iterations": 5,
		},
	}
}

func TestValidateSettings_AcceptsFullConfig(t *testing.T) {
	t.Parallel()

	if err := ValidateSettings(validSettings()); err != nil {
		t.Fatalf("ValidateSettings returned error: %v", err)
	}
}

func TestValidateSettings_AcceptsMinimalConfig(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm": map[string]any{
			"provider": ProviderGemini,
			"model":    "gemini-2.5-pro",
		},
		"budgets": map[string]any{
			"max_iterations": 1,
		},
	}
	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("ValidateSettings returned error: %v", err)
	}
}

func TestValidateSettings_RejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings["llm"].(map[string]any)["provider"] = "anthropic"
	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}

func TestValidateSettings_RejectsMissingBudgets(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	delete(settings, "budgets")
	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}

func TestValidateSettings_RejectsZeroMaxIterations(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings["budgets"].(map[string]any)["max_iterations"] = 0
	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}

func TestValidateSettings_RejectsUnknownTopLevelKey(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings["budget"] = map[string]any{"max_iterations": 5}
	err := ValidateSettings(settings)
	if err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
	if !strings.Contains(err.Error(), "config schema validation failed") {
		t.Fatalf("error = %q, want schema validation failure", err.Error())
	}
}

func TestValidateSettings_RejectsOutOfRangeThreshold(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings["pipeline"].(map[string]any)["overlap_threshold"] = 1.5
	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}
