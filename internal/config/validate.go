package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded configuration. Load calls it automatically;
// callers that override fields afterwards (command-line flags) call it again.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dictionary.AffPath) == "" {
		return errors.New("dictionary.aff_path is required")
	}
	if err := c.Generator.validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be > 0 (got %d)", c.Server.MaxBodyBytes)
	}
	return nil
}

func (g *GeneratorConfig) validate() error {
	if g.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", g.Workers)
	}
	if g.CompoundLimit <= 0 {
		return fmt.Errorf("compound_limit must be > 0 (got %d)", g.CompoundLimit)
	}
	if g.CompoundMaxLimit < g.CompoundLimit {
		return fmt.Errorf("compound_max_limit must be >= compound_limit (got %d < %d)", g.CompoundMaxLimit, g.CompoundLimit)
	}
	if g.CompoundMaxComponents < 2 {
		return fmt.Errorf("compound_max_components must be >= 2 (got %d)", g.CompoundMaxComponents)
	}
	return nil
}
