package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/planloom/planloom/internal/config"
	"github.com/planloom/planloom/internal/llm"
	"github.com/planloom/planloom/internal/store"
)

func openDB() (*sql.DB, string, func(), error) {
	workRoot, err := os.Getwd()
	if err != nil {
		return nil, "", func() {}, err
	}
	loomDir := filepath.Join(workRoot, ".planloom")
	if err := os.MkdirAll(loomDir, 0o755); err != nil {
		return nil, "", func() {}, err
	}
	dbPath := filepath.Join(loomDir, "planloom.db")
	storeDB, err := store.Open(dbPath)
	if err != nil {
		return nil, "", func() {}, err
	}
	return storeDB, workRoot, func() { _ = storeDB.Close() }, nil
}

func loadConfig(workRoot string) (config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = filepath.Join(".planloom", "config.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workRoot, path)
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := config.ValidateSettings(viper.AllSettings()); err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Budgets.MaxIterations <= 0 {
		return config.Config{}, fmt.Errorf("budgets.max_iterations must be > 0")
	}
	return cfg, nil
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIGenerator(llm.OpenAIConfig{
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			APIKeyEnv: cfg.APIKeyEnv,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, nil)
	case config.ProviderGemini:
		return llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			APIKeyEnv: cfg.APIKeyEnv,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// collectDocuments lists the supported document files in a directory,
// sorted for stable cache keys.
func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".md", ".markdown", ".txt":
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no documents found in %s", dir)
	}
	sort.Strings(out)
	return out, nil
}
