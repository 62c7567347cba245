package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/caregate/caregate"
	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/pkg/domain"
)

// escalateCmd runs an escalation drill against the logging dispatcher so
// operators can verify plans and messages per severity/category.
var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Run an escalation drill (logging dispatcher only)",
	Run: func(cmd *cobra.Command, args []string) {
		severity, _ := cmd.Flags().GetString("severity")
		category, _ := cmd.Flags().GetString("category")
		message, _ := cmd.Flags().GetString("message")

		plane, err := caregate.New(caregate.WithLogger(logging.New(slog.LevelInfo)))
		if err != nil {
			fmt.Printf("Error initializing control plane: %v\n", err)
			os.Exit(1)
		}

		classification := domain.Classification{
			IsEmergency:       true,
			EmergencySeverity: domain.Severity(severity),
		}
		if !plane.ShouldEscalate(classification) {
			fmt.Printf("Severity %q does not escalate\n", severity)
			os.Exit(1)
		}

		result := plane.Escalate(cmd.Context(), classification, domain.EscalationContext{
			Severity: classification.EmergencySeverity,
			Category: category,
			User: domain.UserContext{
				UserID:  "drill",
				Message: message,
			},
		})

		fmt.Println(result.Message)
		fmt.Println("Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("- %s\n", rec)
		}
	},
}

func init() {
	escalateCmd.Flags().String("severity", "MODERATE", "Emergency severity (MODERATE, URGENT, CRITICAL)")
	escalateCmd.Flags().String("category", "", "Emergency category (cardiac, respiratory, ...)")
	escalateCmd.Flags().String("message", "escalation drill", "Simulated user message")
	rootCmd.AddCommand(escalateCmd)
}
