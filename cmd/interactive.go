package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/session"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Menu-driven run for one account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts, account)
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "account name (default: first configured account)")
	return cmd
}

func runInteractive(cmd *cobra.Command, opts *rootOptions, account string) error {
	out := cmd.OutOrStdout()

	a, err := loadApp(opts, out, account)
	if err != nil {
		return err
	}
	defer a.close()

	displayWarningBanner(out, !opts.noWait, a.sleep)

	acct, err := pickAccount(a.cfg, account)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("LinkedIn outreach started", "version", AppVersion, "account", acct.Name)
	logger.Warn("This tool is for EDUCATIONAL purposes only and violates LinkedIn's Terms of Service")

	s, err := a.openSession(acct)
	if err != nil {
		return err
	}
	defer func() {
		fmt.Fprintln(out, renderSummary(s.Close()))
	}()

	m := &menu{app: a, session: s, in: bufio.NewScanner(cmd.InOrStdin()), out: out}
	return m.loop(ctx)
}

// menu is the line-oriented interactive surface over one session
type menu struct {
	app     *app
	session *session.Session
	in      *bufio.Scanner
	out     io.Writer
}

func (m *menu) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			logger.Info("Received shutdown signal, cleaning up...")
			return nil
		}

		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, titleStyle.Render("LinkedIn outreach - "+m.session.Account().Name))
		fmt.Fprintln(m.out, "  1) Search people")
		fmt.Fprintln(m.out, "  2) Send connection requests")
		fmt.Fprintln(m.out, "  3) Run a configured campaign")
		fmt.Fprintln(m.out, "  4) Show daily usage")
		fmt.Fprintln(m.out, "  5) Export to CSV")
		fmt.Fprintln(m.out, "  6) Exit")

		choice, ok := m.ask("Choose an option: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			m.search()
		case "2":
			m.connect(ctx)
		case "3":
			m.runCampaign(ctx)
		case "4":
			fmt.Fprintln(m.out, renderLedger(m.session.Account().Name, m.session.Ledger().Snapshot(), m.app.cfg.QuotaLimits()))
		case "5":
			m.export()
		case "6", "q", "exit":
			return nil
		default:
			fmt.Fprintln(m.out, warningStyle.Render("Unknown option "+strconv.Quote(choice)))
		}
	}
}

// ask prints prompt and reads one trimmed line. ok is false at end of input.
func (m *menu) ask(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) askInt(prompt string, def int) int {
	answer, _ := m.ask(fmt.Sprintf("%s [%d]: ", prompt, def))
	n, err := strconv.Atoi(answer)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (m *menu) askYes(prompt string) bool {
	answer, _ := m.ask(prompt + " [y/N]: ")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func (m *menu) search() {
	keyword, _ := m.ask("Keywords: ")
	if keyword == "" {
		fmt.Fprintln(m.out, warningStyle.Render("Keywords are required"))
		return
	}
	location, _ := m.ask("Location (optional): ")
	limit := m.askInt("How many profiles", 10)

	urls, res := m.session.Executor().SearchPeople(keyword, location, limit)
	fmt.Fprintln(m.out, renderResult(res))
	for i, u := range urls {
		fmt.Fprintf(m.out, "%3d. %s\n", i+1, u)
	}
	if len(urls) == 0 || !m.askYes("Visit the profiles and extract details?") {
		return
	}

	var profiles []outreach.ProfileInfo
	for _, u := range urls {
		info, res := m.session.Executor().VisitProfile(u)
		fmt.Fprintln(m.out, renderResult(res))
		if res.Status == outreach.StatusLimitReached {
			break
		}
		if res.OK() {
			profiles = append(profiles, info)
			fmt.Fprintf(m.out, "    %s | %s | %s\n", info.Name, info.Title, info.Location)
		}
	}

	if len(profiles) == 0 {
		return
	}
	path, err := storage.SaveProfilesCSV(defaultExportDir, profiles, m.app.now())
	if err != nil {
		logger.Error("Failed to save profiles", "error", err)
		fmt.Fprintln(m.out, dangerStyle.Render("Failed to save profiles: "+err.Error()))
		return
	}
	fmt.Fprintln(m.out, successStyle.Render("Saved "+path))
}

func (m *menu) connect(ctx context.Context) {
	keyword, _ := m.ask("Keywords: ")
	if keyword == "" {
		fmt.Fprintln(m.out, warningStyle.Render("Keywords are required"))
		return
	}
	location, _ := m.ask("Location (optional): ")
	count := m.askInt("How many requests", 5)

	c := config.Campaign{
		Name:                "interactive",
		Keywords:            []string{keyword},
		DailyConnectionGoal: count,
	}
	if location != "" {
		c.Locations = []string{location}
	}
	fmt.Fprintln(m.out, renderTotals(m.session.RunCampaign(ctx, c)))
}

func (m *menu) runCampaign(ctx context.Context) {
	campaigns := m.app.cfg.Campaigns
	for i, c := range campaigns {
		fmt.Fprintf(m.out, "  %d) %s %s\n", i+1, c.Name, mutedStyle.Render(strings.Join(c.Keywords, ", ")))
	}
	fmt.Fprintln(m.out, "  c) Custom campaign")

	answer, _ := m.ask("Campaign [c]: ")
	if answer == "" || strings.EqualFold(answer, "c") {
		c, ok := m.customCampaign()
		if !ok {
			return
		}
		fmt.Fprintln(m.out, renderTotals(m.session.RunCampaign(ctx, c)))
		return
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(campaigns) {
		fmt.Fprintln(m.out, warningStyle.Render("No such campaign"))
		return
	}
	fmt.Fprintln(m.out, renderTotals(m.session.RunCampaign(ctx, campaigns[n-1])))
}

// customCampaign prompts for a one-off campaign. Goals default to what is
// left of today's limits; 0 skips that kind of action.
func (m *menu) customCampaign() (config.Campaign, bool) {
	keywords := splitList(m.askLine("Keywords (comma separated): "))
	if len(keywords) == 0 {
		fmt.Fprintln(m.out, warningStyle.Render("Keywords are required"))
		return config.Campaign{}, false
	}

	c := config.Campaign{
		Name:      "custom",
		Keywords:  keywords,
		Locations: splitList(m.askLine("Locations (comma separated, optional): ")),
	}
	c.DailyConnectionGoal = m.askCount("Connection goal", m.remaining(quota.Connections))
	c.DailyMessageGoal = m.askCount("Follow-up message goal", 0)
	if c.DailyMessageGoal > 0 {
		c.FollowUpMessage = m.askLine("Follow-up message (empty for the default): ")
		if c.FollowUpMessage == "" {
			c.FollowUpMessage = m.app.cfg.Outreach.DefaultFollowUp
		}
	}
	return c, true
}

func (m *menu) remaining(c quota.Category) int {
	if m.session == nil {
		return m.app.cfg.QuotaLimits()[c]
	}
	return m.session.Ledger().Remaining(c)
}

func (m *menu) askLine(prompt string) string {
	answer, _ := m.ask(prompt)
	return answer
}

// askCount reads a non-negative number, keeping def on empty or bad input
func (m *menu) askCount(prompt string, def int) int {
	answer, _ := m.ask(fmt.Sprintf("%s [%d]: ", prompt, def))
	n, err := strconv.Atoi(answer)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m *menu) export() {
	if err := m.app.requireStore(); err != nil {
		fmt.Fprintln(m.out, dangerStyle.Render(err.Error()))
		return
	}
	paths, err := m.app.store.Export(defaultExportDir, m.session.Account().Name, m.app.now())
	if err != nil {
		logger.Error("Export failed", "error", err)
		fmt.Fprintln(m.out, dangerStyle.Render("Export failed: "+err.Error()))
		return
	}
	for _, p := range paths {
		fmt.Fprintln(m.out, successStyle.Render("Wrote "+p))
	}
}
