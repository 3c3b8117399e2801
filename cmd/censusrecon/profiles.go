package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blitzmed/censusrecon/internal/model"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the supported client profiles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, ps := range model.AllProfiles {
			key := ps.LicenseKey
			if key == "" {
				key = "-"
			}
			fmt.Printf("%-10s license=%-8s required columns: %s\n",
				ps.Name, key, strings.Join(ps.Required, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
