// Package output - CLI and markdown formatters
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"factory-graph/core/ui"
)

// CLIFormatter renders a colored terminal table
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes the report as a table
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	out.Header("Production Graph: " + report.Source)

	if report.Cyclic {
		out.Error("graph contains a cycle: %s", strings.Join(report.Cycle, " -> "))
		out.Println("")
	}

	headers := []string{"Item", "Final", "Cost", "Profit", "Storage", "Net", "Bottleneck"}
	if f.opts.ShowInputs {
		headers = append(headers, "Inputs")
	}
	table := out.NewTable(headers...)

	for _, item := range report.Items {
		row := []string{
			item.Label,
			yesNo(item.Final),
			money(item.Cost, f.opts.Precision),
			money(item.Profit, f.opts.Precision),
			fmt.Sprintf("%d", item.Storage),
			"-",
			"-",
		}
		if item.Net != nil {
			row[5] = money(*item.Net, f.opts.Precision)
		}
		if item.Bottleneck != nil {
			row[6] = fmt.Sprintf("%d", *item.Bottleneck)
		}
		if f.opts.ShowInputs {
			row = append(row, formatInputs(item.Inputs))
		}
		table.AddRow(row...)
	}
	table.Render()

	out.Println("")
	out.SubHeader(fmt.Sprintf("%d items, %d final products", report.Summary.Items, report.Summary.FinalProducts))
	if report.Summary.BestNet != nil {
		out.Success("best margin: %s (%s per unit)", report.Summary.Best, money(*report.Summary.BestNet, f.opts.Precision))
	}
	if report.Summary.CycleProfit != nil {
		out.Info("profit per cycle at bottleneck: %s", money(*report.Summary.CycleProfit, f.opts.Precision))
	}
	return nil
}

// MarkdownFormatter renders a markdown table
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render writes the report as markdown
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## Production Graph: %s\n\n", report.Source)
	if report.Cyclic {
		fmt.Fprintf(&b, "> **Cycle detected:** %s\n\n", strings.Join(report.Cycle, " → "))
	}

	b.WriteString("| Item | Final | Cost | Profit | Storage | Net | Bottleneck |")
	if f.opts.ShowInputs {
		b.WriteString(" Inputs |")
	}
	b.WriteString("\n|---|---|---:|---:|---:|---:|---:|")
	if f.opts.ShowInputs {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, item := range report.Items {
		net, bottleneck := "-", "-"
		if item.Net != nil {
			net = money(*item.Net, f.opts.Precision)
		}
		if item.Bottleneck != nil {
			bottleneck = fmt.Sprintf("%d", *item.Bottleneck)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s |",
			escapeCell(item.Label), yesNo(item.Final),
			money(item.Cost, f.opts.Precision), money(item.Profit, f.opts.Precision),
			item.Storage, net, bottleneck)
		if f.opts.ShowInputs {
			fmt.Fprintf(&b, " %s |", escapeCell(formatInputs(item.Inputs)))
		}
		b.WriteString("\n")
	}

	if report.Summary.BestNet != nil {
		fmt.Fprintf(&b, "\nBest margin: **%s** (%s per unit)\n",
			escapeCell(report.Summary.Best), money(*report.Summary.BestNet, f.opts.Precision))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func money(d decimal.Decimal, precision int32) string {
	return d.StringFixed(precision)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatInputs(inputs []InputReport) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = fmt.Sprintf("%s×%s", in.Quantity, in.Label)
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
