package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caregate/caregate/pkg/domain"
)

// Formatter renders one execution result as chat markdown.
type Formatter func(meta domain.ToolMetadata, res domain.ToolExecutionResult) string

// formatters maps tool categories onto their chat renderers. The default
// formatter is the supported extension point for new families: a category
// without an entry falls through to it.
var formatters = map[string]Formatter{
	"severity_score": formatScore,
	"interaction":    formatInteractions,
	"lab":            formatLabPanel,
}

// FormatForChat renders a result using the category's formatter. A
// formatting panic degrades to the generic rendering; formatting never
// fails the call.
func FormatForChat(meta domain.ToolMetadata, res domain.ToolExecutionResult) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = formatDefault(meta, res)
		}
	}()

	if !res.Success {
		return formatError(meta.ID, res)
	}
	if f, ok := formatters[meta.Category]; ok {
		return f(meta, res)
	}
	return formatDefault(meta, res)
}

func formatError(toolID string, res domain.ToolExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## ⚠️ %s failed\n\n", toolID)
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	return b.String()
}

func formatScore(meta domain.ToolMetadata, res domain.ToolExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", meta.Name)
	if total, ok := res.Data["total_score"]; ok {
		fmt.Fprintf(&b, "**Total score: %v**\n\n", total)
	}
	if comps, ok := res.Data["components"].(map[string]int); ok {
		names := make([]string, 0, len(comps))
		for name := range comps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, comps[name])
		}
		b.WriteString("\n")
	}
	writeCommonSections(&b, res)
	return b.String()
}

func formatInteractions(meta domain.ToolMetadata, res domain.ToolExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", meta.Name)
	if pairs, ok := res.Data["interactions"].([]map[string]any); ok {
		if len(pairs) == 0 {
			b.WriteString("No known interactions found.\n\n")
		}
		for _, p := range pairs {
			fmt.Fprintf(&b, "- **%v + %v** (%v): %v\n", p["drug_a"], p["drug_b"], p["severity"], p["description"])
		}
		if len(pairs) > 0 {
			b.WriteString("\n")
		}
	}
	writeCommonSections(&b, res)
	return b.String()
}

func formatLabPanel(meta domain.ToolMetadata, res domain.ToolExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", meta.Name)
	if flags, ok := res.Data["flags"].([]map[string]any); ok {
		if len(flags) == 0 {
			b.WriteString("All reported values within reference ranges.\n\n")
		}
		for _, f := range flags {
			fmt.Fprintf(&b, "- **%v**: %v (%v, reference %v)\n", f["analyte"], f["value"], f["flag"], f["reference"])
		}
		if len(flags) > 0 {
			b.WriteString("\n")
		}
	}
	writeCommonSections(&b, res)
	return b.String()
}

// formatDefault is the generic rendering: interpretation, warnings, and
// disclaimer.
func formatDefault(meta domain.ToolMetadata, res domain.ToolExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", meta.Name)
	writeCommonSections(&b, res)
	return b.String()
}

func writeCommonSections(b *strings.Builder, res domain.ToolExecutionResult) {
	if res.Interpretation != "" {
		fmt.Fprintf(b, "%s\n\n", res.Interpretation)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(b, "> ⚠️ %s\n", w)
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n")
	}
	if res.Disclaimer != "" {
		fmt.Fprintf(b, "_%s_\n", res.Disclaimer)
	}
}
