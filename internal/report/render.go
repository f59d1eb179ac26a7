package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/respfilter/internal/model"
)

// Render formats run summaries and the optional top segments as a terminal block.
func Render(runs []model.RunSummary, top []model.SegmentCount) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	separator := dim.Render("    ─────────────────────────────────")

	var lines []string
	lines = append(lines, "")
	for _, r := range runs {
		lines = append(lines, bold.Render("    "+shortenPath(r.Source)))
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("    %s  Filter         %s", check,
			cyan.Render(fmt.Sprintf("*%s  status %s", r.Extension, r.ResponseCode))))
		lines = append(lines, fmt.Sprintf("    %s  Lines read     %s", check, dim.Render(fmt.Sprint(r.Lines))))
		lines = append(lines, fmt.Sprintf("    %s  Matched        %s", check, dim.Render(fmt.Sprint(r.Matched))))
		if r.Skipped > 0 {
			yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
			lines = append(lines, fmt.Sprintf("    %s  Skipped        %s", yellow.Render("●"), yellow.Render(fmt.Sprint(r.Skipped))))
		}
		if r.Deduped {
			lines = append(lines, fmt.Sprintf("    %s  Distinct       %s", check, dim.Render(fmt.Sprint(r.Distinct))))
		}
		lines = append(lines, fmt.Sprintf("    %s  Output         %s", check, cyan.Render(shortenPath(r.Output))))
		lines = append(lines, fmt.Sprintf("    %s  Elapsed        %s", check, dim.Render(r.Elapsed.Round(time.Microsecond).String())))
		lines = append(lines, "")
		lines = append(lines, separator)
		lines = append(lines, "")
	}

	if len(top) > 0 {
		lines = append(lines, bold.Render("    Top segments (all runs)"))
		lines = append(lines, "")
		for _, sc := range top {
			lines = append(lines, fmt.Sprintf("    %7d  %s", sc.Count, sc.Segment))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
