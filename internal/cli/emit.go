package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/statsevent/pkg/statsevent/observability"
	"github.com/randalmurphal/statsevent/pkg/statsevent/statslog"
)

func newEmitCommand(global *globalOptions) *cobra.Command {
	opts := &eventOptions{}
	cmd := &cobra.Command{
		Use:   "emit [atom] [values...]",
		Short: "Encode an event and send it to the collector",
		Example: `  statslog emit --atom 105 -f bool=false -f string=x
  statslog emit --atoms atoms.yaml screen_state_changed 2 10001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := global.settings()
			if err != nil {
				return err
			}
			cat, err := catalog(settings)
			if err != nil {
				return err
			}
			schema, values, err := opts.resolve(cat, args)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), settings)
			logOpts := []statslog.Option{statslog.WithLogger(logger)}
			if settings.SpoolPath == "" {
				// A memory spool dies with this process.
				logOpts = append(logOpts, statslog.WithSpool(nil))
			}
			l, err := statslog.Open(settings, logOpts...)
			if err != nil {
				return err
			}
			defer l.Close()

			ev, err := opts.build(l.NewBuilder(), schema, values)
			if err != nil {
				return err
			}
			size := ev.NumBytes()

			done := observability.TimedOperation()
			outcome, err := l.Send(cmd.Context(), ev)
			switch outcome {
			case statslog.OutcomeSent:
				fmt.Fprintf(cmd.OutOrStdout(), "atom %d: sent %d bytes in %.2fms\n", schema.ID, size, done())
				return nil
			case statslog.OutcomeSpooled:
				fmt.Fprintf(cmd.OutOrStdout(), "atom %d: delivery failed, event spooled to %s (%d bytes)\n",
					schema.ID, settings.SpoolPath, size)
				return nil
			default:
				return fmt.Errorf("atom %d: event dropped: %w", schema.ID, err)
			}
		},
	}
	opts.addFlags(cmd)
	return cmd
}
