package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimcheck/internal/model"
)

// Config holds all runtime configuration for a claimcheck run.
type Config struct {
	DSN          string
	LogFormat    string // "text" or "json"
	Verbose      bool
	OutDir       string // where downloaded artifacts land
	Categories   []string
	DryRun       bool
	ClaimFile    string // path to a ClaimInput JSON document
	ProviderType string // call-site default when the claim carries none

	Sources map[string]string `yaml:"sources"` // category key → landing page URL override
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Categories []string          `yaml:"categories"`
	Sources    map[string]string `yaml:"sources"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if len(yc.Categories) > 0 {
		c.Categories = yc.Categories
	}
	c.Sources = yc.Sources
	return c.validateCategories()
}

// validateCategories checks that every entry in Categories is a known
// category key. If Categories is empty, it defaults to all category keys.
func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		c.Categories = model.CategoryKeys()
		return nil
	}
	for _, key := range c.Categories {
		if _, ok := model.CategoryByKey(key); !ok {
			return fmt.Errorf("unknown category %q in config", key)
		}
	}
	for key := range c.Sources {
		if _, ok := model.CategoryByKey(key); !ok {
			return fmt.Errorf("unknown category %q in sources", key)
		}
	}
	return nil
}

// ResolveCategories returns the Category values selected by the config,
// with any per-category page URL overrides applied.
func (c *Config) ResolveCategories() ([]model.Category, error) {
	if err := c.validateCategories(); err != nil {
		return nil, err
	}
	cats := make([]model.Category, 0, len(c.Categories))
	for _, key := range c.Categories {
		cat, _ := model.CategoryByKey(key)
		if url, ok := c.Sources[key]; ok {
			cat.PageURL = url
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// ValidateWithDSN checks that a DSN is configured.
func (c *Config) ValidateWithDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
