package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yourusername/linkedin-outreach/internal/quota"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var account string
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daily usage, action totals and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			a, err := loadApp(opts, out, account)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireStore(); err != nil {
				return err
			}

			ledgers, err := a.store.Ledgers()
			if err != nil {
				return err
			}
			limits := a.cfg.QuotaLimits()
			today := a.now().Format(quota.DateLayout)
			for _, acct := range a.cfg.Accounts {
				if account != "" && acct.Name != account {
					continue
				}
				st, ok := ledgers[acct.Name]
				if !ok || st.Date != today {
					st = quota.State{Date: today}
				}
				fmt.Fprintln(out, renderLedger(acct.Name, st, limits))
			}

			totals, err := a.store.Stats(account)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(totals))
			for k := range totals {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			rows := make([][2]string, len(keys))
			for i, k := range keys {
				rows[i] = [2]string{k, fmt.Sprint(totals[k])}
			}
			fmt.Fprintln(out, panelStyle.Render(titleStyle.Render("Totals")+"\n"+table(rows)))

			summaries, err := a.store.RecentSummaries(account, recent)
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Fprintln(out, renderSummary(s))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "only this account")
	cmd.Flags().IntVar(&recent, "recent", 3, "number of recent sessions to show")
	return cmd
}
