package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blitzmed/censusrecon/internal/config"
	"github.com/blitzmed/censusrecon/internal/exitcode"
)

var (
	cfg        config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "censusrecon",
	Short: "Clinical census reconciliation against the encounter reporting view",
	Long: "Reconciles an uploaded census of patient visits against the authoritative\n" +
		"encounter reporting view, classifying each visit as billed, pending, or\n" +
		"missing a valid charge code, and writes an annotated copy of the census.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML config file")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}

// loadConfig merges the YAML file (when given) and TABLEAU_* environment
// variables into the flag-populated config.
func loadConfig() error {
	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			return err
		}
	}
	cfg.FromEnv()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
