package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blitzmed/censusrecon/internal/model"
)

// Config holds all runtime configuration for a censusrecon run. Flag values
// win over the YAML file; Tableau credentials come from the environment so
// the secret never lands on a command line.
type Config struct {
	RosterPath   string `yaml:"-"`
	ProfileName  string `yaml:"-"`
	SnapshotPath string `yaml:"-"` // reconcile from a snapshot instead of fetching
	SaveSnapshot string `yaml:"-"` // persist fetched encounters here
	LogFormat    string `yaml:"-"` // "text" or "json"

	Tableau TableauConfig `yaml:"tableau"`

	profile model.Profile
}

// TableauConfig identifies the encounter reporting view. Secret material is
// environment-only and never read from the file.
type TableauConfig struct {
	ServerURL string `yaml:"server_url"`
	SiteID    string `yaml:"site_id"`
	ViewID    string `yaml:"view_id"`
	TokenName string `yaml:"token_name"`

	TokenSecret string `yaml:"-"`
}

// FromEnv fills Tableau settings from TABLEAU_* environment variables.
// Values already present (from the YAML file) are kept.
func (c *Config) FromEnv() {
	setIfEmpty(&c.Tableau.ServerURL, os.Getenv("TABLEAU_SERVER"))
	setIfEmpty(&c.Tableau.SiteID, os.Getenv("TABLEAU_SITE_ID"))
	setIfEmpty(&c.Tableau.ViewID, os.Getenv("TABLEAU_VIEW_ID"))
	setIfEmpty(&c.Tableau.TokenName, os.Getenv("TABLEAU_TOKEN_NAME"))
	c.Tableau.TokenSecret = os.Getenv("TABLEAU_TOKEN_SECRET")
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Profile returns the resolved profile. Valid only after Validate.
func (c *Config) Profile() model.Profile { return c.profile }

// Validate checks the fields every subcommand needs.
func (c *Config) Validate() error {
	if c.ProfileName == "" {
		return fmt.Errorf("--profile is required")
	}
	p, ok := model.ProfileByName(c.ProfileName)
	if !ok {
		return fmt.Errorf("unknown profile %q (want one of: %s)", c.ProfileName, profileNames())
	}
	c.profile = p
	return nil
}

// ValidateForRun additionally checks the roster file and the encounter
// source (either a readable snapshot or complete Tableau settings).
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.RosterPath == "" {
		return fmt.Errorf("--roster is required")
	}
	if _, err := os.Stat(c.RosterPath); err != nil {
		return fmt.Errorf("roster not accessible: %w", err)
	}
	if c.SnapshotPath != "" {
		if _, err := os.Stat(c.SnapshotPath); err != nil {
			return fmt.Errorf("snapshot not accessible: %w", err)
		}
		return nil
	}
	return c.ValidateTableau()
}

// ValidateTableau checks that a fetch is possible.
func (c *Config) ValidateTableau() error {
	t := c.Tableau
	if t.ServerURL == "" || t.ViewID == "" || t.TokenName == "" || t.TokenSecret == "" {
		return fmt.Errorf("tableau settings incomplete: need server URL, view ID, token name (config file or TABLEAU_* env) and TABLEAU_TOKEN_SECRET")
	}
	return nil
}

func profileNames() string {
	names := make([]string, len(model.AllProfiles))
	for i, ps := range model.AllProfiles {
		names[i] = ps.Name
	}
	return strings.Join(names, ", ")
}
