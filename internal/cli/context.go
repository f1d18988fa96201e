package cli

import (
	"sync"

	"github.com/example/tether/internal/config"
)

var (
	loadedConfig *config.Config
	configOnce   sync.Once
)

// projectConfig returns the .tether/config.json for the current
// directory, or nil when none exists. Commands treat a missing config
// as "no defaults", not an error.
func projectConfig() *config.Config {
	configOnce.Do(func() {
		cfg, err := config.LoadConfig(".")
		if err == nil {
			loadedConfig = cfg
		}
	})
	return loadedConfig
}

// defaultRepo resolves a repo flag against the project config.
func defaultRepo(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg := projectConfig(); cfg != nil {
		return cfg.Repo
	}
	return ""
}

// defaultProject resolves a project flag against the project config.
func defaultProject(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg := projectConfig(); cfg != nil {
		return cfg.ProjectName()
	}
	return ""
}

// defaultCategory resolves an agent category flag against the project config.
func defaultCategory(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg := projectConfig(); cfg != nil {
		return cfg.AgentCategory
	}
	return ""
}

// defaultRole resolves a role flag against the project config.
func defaultRole(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg := projectConfig(); cfg != nil {
		return cfg.Role
	}
	return ""
}
