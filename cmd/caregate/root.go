package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "caregate",
	Short: "Caregate is the medical control plane",
	Long: `Caregate routes classified clinical queries through deterministic
clinical calculators, retrieval, a local-generation safety sandwich, or
emergency escalation, always failing closed toward the safest option.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
