package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/linkedin-outreach/internal/campaign"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

var (
	colorAccent  = lipgloss.Color("#0A66C2") // LinkedIn blue
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorDanger  = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#8a8f98")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Width(16)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorWarning).
			Padding(1, 3).
			Width(76)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2)
)

// displayWarningBanner prints the usage warning and, unless skipped, gives
// the operator a few seconds to abort
func displayWarningBanner(w io.Writer, countdown bool, sleep func(time.Duration)) {
	body := lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render("WARNING - EDUCATIONAL USE ONLY"),
		"",
		"This tool automates LinkedIn through a real browser.",
		"Automating LinkedIn violates its Terms of Service and may get the",
		"account restricted or banned. Use test accounts only.",
		"",
		mutedStyle.Render("By continuing you accept full responsibility for any consequences."),
	)
	fmt.Fprintln(w, bannerStyle.Render(body))
	fmt.Fprintln(w, mutedStyle.Render("Press Ctrl+C at any time to stop."))

	if !countdown {
		return
	}
	fmt.Fprintln(w, "Starting in 5 seconds...")
	for i := 5; i > 0; i-- {
		fmt.Fprintf(w, "%d...\n", i)
		sleep(time.Second)
	}
	fmt.Fprintln(w)
}

// renderLedger shows one account's daily usage against its limits
func renderLedger(account string, st quota.State, limits quota.Limits) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("%s  %s", account, mutedStyle.Render(st.Date)))}
	for _, c := range quota.Categories {
		count, limit := st.Count(c), limits[c]
		lines = append(lines, labelStyle.Render(string(c))+usageStyle(count, limit).Render(usage(count, limit)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func usage(count, limit int) string {
	if limit <= 0 {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", count, limit, float64(count)*100/float64(limit))
}

func usageStyle(count, limit int) lipgloss.Style {
	switch {
	case limit > 0 && count >= limit:
		return dangerStyle
	case limit > 0 && count*10 >= limit*8:
		return warningStyle
	default:
		return successStyle
	}
}

// renderTotals shows the outcome of one campaign run
func renderTotals(t campaign.Totals) string {
	rows := [][2]string{
		{"stop", string(t.Stop)},
		{"searches", fmt.Sprint(t.Searches)},
		{"profiles", fmt.Sprint(t.Profiles)},
		{"connections", fmt.Sprint(t.Connections)},
		{"messages", fmt.Sprint(t.Messages)},
		{"already", fmt.Sprint(t.AlreadyDone)},
		{"not found", fmt.Sprint(t.NotFound)},
		{"failed", fmt.Sprint(t.Failed)},
		{"skipped", fmt.Sprint(t.Skipped)},
		{"breaks", fmt.Sprint(t.Breaks)},
	}
	return panelStyle.Render(titleStyle.Render("Campaign "+t.Campaign) + "\n" + table(rows))
}

// renderSummary shows a finished session
func renderSummary(s storage.Summary) string {
	rows := [][2]string{
		{"session", s.ID},
		{"account", s.Account},
		{"started", s.StartedAt.Format("2006-01-02 15:04:05")},
		{"duration", fmt.Sprintf("%.1f min", s.Duration().Minutes())},
		{"connections", fmt.Sprint(s.Connections)},
		{"messages", fmt.Sprint(s.Messages)},
		{"profiles", fmt.Sprint(s.Profiles)},
		{"searches", fmt.Sprint(s.Searches)},
	}
	if s.Fault != "" {
		rows = append(rows, [2]string{"fault", dangerStyle.Render(s.Fault)})
	}
	return panelStyle.Render(titleStyle.Render("Session summary") + "\n" + table(rows))
}

// renderResult is the one-line outcome of a single action
func renderResult(r outreach.Result) string {
	style := mutedStyle
	switch r.Status {
	case outreach.StatusSent:
		style = successStyle
	case outreach.StatusAlreadyDone, outreach.StatusNotFound, outreach.StatusLimitReached:
		style = warningStyle
	case outreach.StatusFailed:
		style = dangerStyle
	}
	line := fmt.Sprintf("%-13s %s", style.Render(string(r.Status)), r.Target)
	if r.Detail != "" {
		line += " " + mutedStyle.Render(r.Detail)
	}
	return line
}

func table(rows [][2]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = labelStyle.Render(row[0]) + row[1]
	}
	return strings.Join(lines, "\n")
}
