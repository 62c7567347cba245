package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/caregate/caregate"
	"github.com/caregate/caregate/pkg/domain"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and run clinical tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clinical tools",
	Run: func(cmd *cobra.Command, args []string) {
		plane := mustPlane()
		tier, _ := cmd.Flags().GetString("tier")

		tools := plane.ListTools()
		if tier != "" {
			tools = plane.ToolsByTier(domain.SubscriptionTier(tier))
		}
		for _, t := range tools {
			fmt.Printf("%-26s %-16s %s\n", t.ID, t.Category, t.Description)
		}
	},
}

var toolsValidateCmd = &cobra.Command{
	Use:   "validate <tool-id>",
	Short: "Validate tool parameters without executing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plane := mustPlane()
		params := mustParams(cmd)

		res := plane.ValidateTool(domain.ExecuteToolRequest{
			ToolID:     args[0],
			Parameters: params,
		})
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
	},
}

var toolsExecCmd = &cobra.Command{
	Use:   "exec <tool-id>",
	Short: "Execute a clinical tool and render the chat output",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plane := mustPlane()
		params := mustParams(cmd)

		chat := plane.ExecuteToolInChat(cmd.Context(), args[0], params, "cli", "")

		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			fmt.Println(chat.FormattedForChat)
			return
		}
		rendered, err := renderer.Render(chat.FormattedForChat)
		if err != nil {
			fmt.Println(chat.FormattedForChat)
			return
		}
		fmt.Print(rendered)
	},
}

func mustPlane() *caregate.ControlPlane {
	plane, err := caregate.New()
	if err != nil {
		fmt.Printf("Error initializing control plane: %v\n", err)
		os.Exit(1)
	}
	return plane
}

func mustParams(cmd *cobra.Command) map[string]any {
	raw, _ := cmd.Flags().GetString("params")
	params := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			fmt.Printf("Error parsing --params: %v\n", err)
			os.Exit(1)
		}
	}
	return params
}

func init() {
	toolsListCmd.Flags().String("tier", "", "Filter by subscription tier (FREE, PROFESSIONAL, INSTITUTIONAL)")
	toolsValidateCmd.Flags().String("params", "", "Tool parameters as a JSON object")
	toolsExecCmd.Flags().String("params", "", "Tool parameters as a JSON object")

	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsValidateCmd)
	toolsCmd.AddCommand(toolsExecCmd)
	rootCmd.AddCommand(toolsCmd)
}
