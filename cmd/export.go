package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/linkedin-outreach/internal/logger"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var account, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the action log and visited profiles as CSV",
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

			paths, err := a.store.Export(dir, account, a.now())
			if err != nil {
				return err
			}
			for _, p := range paths {
				logger.Info("Exported", "path", p)
				fmt.Fprintln(out, successStyle.Render("Wrote "+p))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "only this account (default: all)")
	cmd.Flags().StringVarP(&dir, "dir", "d", defaultExportDir, "output directory")
	return cmd
}
