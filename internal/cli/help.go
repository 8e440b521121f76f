package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D75F00")).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500")).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)
)

// helpRow is one entry of a help section: the flag or argument spelling on
// the left, its description on the right.
type helpRow struct {
	left string
	help string
}

// StyledHelpPrinter renders the autocut help screen: title, usage, the
// positional file arguments, then the flags with their descriptions aligned
// in a single column.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("AutoCut ✂"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Silence-based rough cuts for video editing"))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString(fmt.Sprintf("\n  %s [flags] <files> ...\n", ctx.Model.Name))

		writeHelpSection(&sb, "Arguments:", helpArgStyle, argRows(ctx))
		writeHelpSection(&sb, "Flags:", helpFlagStyle, flagRows(ctx))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

// writeHelpSection renders one titled section with the left column padded to
// a common width so the descriptions line up.
func writeHelpSection(sb *strings.Builder, title string, style lipgloss.Style, rows []helpRow) {
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, row := range rows {
		if len(row.left) > width {
			width = len(row.left)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString("  ")
		sb.WriteString(style.Render(fmt.Sprintf("%-*s", width, row.left)))
		if row.help != "" {
			sb.WriteString("  ")
			sb.WriteString(row.help)
		}
		sb.WriteString("\n")
	}
}

func argRows(ctx *kong.Context) []helpRow {
	var rows []helpRow
	for _, arg := range ctx.Model.Node.Positional {
		rows = append(rows, helpRow{left: arg.Summary(), help: arg.Help})
	}
	return rows
}

func flagRows(ctx *kong.Context) []helpRow {
	rows := []helpRow{{left: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue // Already added
		}

		left := "--" + f.Name
		if f.Short != 0 {
			left = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			left += "=" + strings.ToUpper(f.PlaceHolder)
		}

		rows = append(rows, helpRow{left: left, help: f.Help})
	}

	return rows
}
