package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caregate/caregate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of caregate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("caregate version %s\n", strings.TrimSpace(caregate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
