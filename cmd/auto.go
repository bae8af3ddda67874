package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/linkedin-outreach/internal/campaign"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
)

func newAutoCmd(opts *rootOptions) *cobra.Command {
	var accountNames, campaignNames []string

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Run every configured campaign for every account, unattended",
		Long: "auto walks the configured accounts in order and runs each campaign for them. " +
			"A session fault skips the rest of that account's campaigns; the next account still runs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			a, err := loadApp(opts, out, "")
			if err != nil {
				return err
			}
			defer a.close()

			displayWarningBanner(out, !opts.noWait, a.sleep)

			accounts, err := selectAccounts(a.cfg, accountNames)
			if err != nil {
				return err
			}
			campaigns, err := selectCampaigns(a.cfg, campaignNames)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAuto(ctx, a, accounts, campaigns)
		},
	}
	cmd.Flags().StringSliceVarP(&accountNames, "account", "a", nil, "only these accounts (repeatable)")
	cmd.Flags().StringSliceVar(&campaignNames, "campaign", nil, "only these campaigns (repeatable)")
	return cmd
}

// runAuto runs campaigns for each account in turn. It fails only when no
// account could be run at all.
func runAuto(ctx context.Context, a *app, accounts []config.Account, campaigns []config.Campaign) error {
	failed := 0
	for i, acct := range accounts {
		if ctx.Err() != nil {
			logger.Info("Received shutdown signal, stopping automatic run")
			break
		}

		if err := runAccount(ctx, a, acct, campaigns); err != nil {
			failed++
			logger.Error("Account run aborted", "account", acct.Name, "error", err)
			fmt.Fprintln(a.out, dangerStyle.Render(fmt.Sprintf("%s: %v", acct.Name, err)))
		}

		if i < len(accounts)-1 {
			if err := a.wait(ctx, a.cfg.BetweenCampaigns()); err != nil {
				break
			}
		}
	}

	if len(accounts) > 0 && failed == len(accounts) {
		return errors.New("every account failed to start")
	}
	return nil
}

func runAccount(ctx context.Context, a *app, acct config.Account, campaigns []config.Campaign) error {
	if wait := a.cfg.WorkSchedule().Until(a.now()); wait > 0 {
		logger.Info("Outside business hours, sleeping...", "account", acct.Name, "wait_duration", wait)
		if err := a.wait(ctx, wait); err != nil {
			return err
		}
	}

	if err := initLogger(a.cfg, acct.Name); err != nil {
		return err
	}

	s, err := a.openSession(acct)
	if err != nil {
		return err
	}
	defer func() {
		fmt.Fprintln(a.out, renderSummary(s.Close()))
	}()

	for i, c := range campaigns {
		logger.Info("=== Starting campaign ===", "account", acct.Name, "campaign", c.Name)
		totals := s.RunCampaign(ctx, c)
		fmt.Fprintln(a.out, renderTotals(totals))

		if totals.Stop == campaign.StopLimitReached || totals.Stop == campaign.StopInterrupted {
			logger.Info("Stopping campaigns for account", "account", acct.Name, "reason", totals.Stop)
			break
		}
		if i < len(campaigns)-1 {
			logger.Info("Pausing between campaigns", "duration", a.cfg.BetweenCampaigns())
			if err := a.wait(ctx, a.cfg.BetweenCampaigns()); err != nil {
				break
			}
		}
	}
	return nil
}

func selectAccounts(cfg *config.Config, names []string) ([]config.Account, error) {
	if len(names) == 0 {
		return cfg.Accounts, nil
	}
	accounts := make([]config.Account, 0, len(names))
	for _, name := range names {
		acct, err := pickAccount(cfg, name)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func selectCampaigns(cfg *config.Config, names []string) ([]config.Campaign, error) {
	if len(names) == 0 {
		if len(cfg.Campaigns) == 0 {
			return nil, errors.New("no campaigns configured")
		}
		return cfg.Campaigns, nil
	}
	campaigns := make([]config.Campaign, 0, len(names))
	for _, name := range names {
		found := false
		for _, c := range cfg.Campaigns {
			if c.Name == name {
				campaigns = append(campaigns, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("campaign %q not found in configuration", name)
		}
	}
	return campaigns, nil
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
