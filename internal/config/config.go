// Package config reads and writes the per-project tether configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat tether configuration. Repo and Project
// give CLI commands their default scoping; AgentCategory and Role
// identify the writer for artifact and bundle operations.
type Config struct {
	Version       string `json:"version"`
	Repo          string `json:"repo"`                     // e.g. "acme/api"
	Project       string `json:"project,omitempty"`        // message thread namespace, defaults to Repo
	AgentCategory string `json:"agent_category,omitempty"` // e.g. "implementer"
	Role          string `json:"role,omitempty"`           // bundle consumer role
}

// ProjectName returns the message namespace, falling back to the repo.
func (c *Config) ProjectName() string {
	if c.Project != "" {
		return c.Project
	}
	return c.Repo
}

// LoadConfig reads .tether/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".tether", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	tetherDir := filepath.Join(dir, ".tether")
	if err := os.MkdirAll(tetherDir, 0755); err != nil {
		return fmt.Errorf("failed to create .tether dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(tetherDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
