package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	uni20 "github.com/uni20/uni20-go"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	emptyStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
)

// requiredFieldOrder fixes the display order of the required string fields.
var requiredFieldOrder = []struct {
	label string
	get   func(*uni20.BuildInfo) string
}{
	{"Generator", func(bi *uni20.BuildInfo) string { return bi.Generator }},
	{"Build type", func(bi *uni20.BuildInfo) string { return bi.BuildType }},
	{"System", func(bi *uni20.BuildInfo) string { return bi.SystemName }},
	{"System version", func(bi *uni20.BuildInfo) string { return bi.SystemVersion }},
	{"Processor", func(bi *uni20.BuildInfo) string { return bi.SystemProcessor }},
	{"C++ compiler", func(bi *uni20.BuildInfo) string { return bi.CXXCompilerID }},
	{"Compiler version", func(bi *uni20.BuildInfo) string { return bi.CXXCompilerVersion }},
	{"Compiler path", func(bi *uni20.BuildInfo) string { return bi.CXXCompilerPath }},
}

// RenderBuildInfo produces the human-readable listing of a BuildInfo
// snapshot: the required fields first, then the two option maps with sorted
// keys and indented help text.
func RenderBuildInfo(bi *uni20.BuildInfo) string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render("uni20 build") + "\n")
	for _, field := range requiredFieldOrder {
		fmt.Fprintf(&sb, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-18s", field.label)), field.get(bi))
	}

	renderOptions(&sb, "Build options", bi.BuildOptions)
	renderOptions(&sb, "Detected environment", bi.DetectedEnvironment)

	if len(bi.Extra) > 0 {
		sb.WriteString("\n" + headingStyle.Render("Additional keys") + "\n")
		for _, key := range sortedKeys(bi.Extra) {
			fmt.Fprintf(&sb, "  %s %v\n", keyStyle.Render(fmt.Sprintf("%-18s", key)), bi.Extra[key])
		}
	}

	return sb.String()
}

func renderOptions(sb *strings.Builder, heading string, entries map[string]uni20.OptionEntry) {
	sb.WriteString("\n" + headingStyle.Render(heading) + "\n")

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := entries[key]
		value := ""
		if entry.Value != nil {
			value = *entry.Value
		}
		if value == "" {
			value = emptyStyle.Render("(unset)")
		}
		fmt.Fprintf(sb, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-28s", key)), value)
		if entry.Help != "" {
			fmt.Fprintf(sb, "    %s\n", helpStyle.Render(entry.Help))
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
