package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// schema.json pins the accepted shape of a planloom config file: provider
// names, iteration budgets, and score thresholds.
//
//go:embed schema.json
var schemaJSON string

// ValidateSettings checks the merged viper settings against the embedded
// schema before they are decoded into Config. Schema messages are sorted so
// a broken config file reports the same error text on every run.
func ValidateSettings(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		msgs = append(msgs, schemaErr.String())
	}
	sort.Strings(msgs)
	return fmt.Errorf("config schema validation failed: %s", strings.Join(msgs, "; "))
}
