package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/statsevent/pkg/statsevent/statslog"
)

func newFlushCommand(global *globalOptions) *cobra.Command {
	var spoolPath string
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Re-send events from the spool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := global.settings()
			if err != nil {
				return err
			}
			if spoolPath != "" {
				settings.SpoolPath = spoolPath
			}
			if settings.SpoolPath == "" {
				return fmt.Errorf("flush needs a persistent spool: set spool.path or --spool")
			}

			logger := newLogger(cmd.ErrOrStderr(), settings)
			l, err := statslog.Open(settings, statslog.WithLogger(logger))
			if err != nil {
				return err
			}
			defer l.Close()

			stats, err := l.Flush(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d, dropped %d, failed %d, remaining %d\n",
				stats.Sent, stats.Dropped, stats.Failed, stats.Remaining)
			return err
		},
	}
	cmd.Flags().StringVar(&spoolPath, "spool", "", "Spool database (overrides spool.path)")
	return cmd
}
