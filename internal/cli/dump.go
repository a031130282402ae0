package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

func newDumpCommand(global *globalOptions) *cobra.Command {
	opts := &eventOptions{}
	cmd := &cobra.Command{
		Use:   "dump [atom] [values...]",
		Short: "Encode an event and print its payload without sending it",
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

			ev, err := opts.build(statsevent.NewBuilder(), schema, values)
			if err != nil {
				return err
			}
			defer ev.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "atom:   %d (%s)\n", ev.AtomID(), schema.Name)
			fmt.Fprintf(out, "size:   %d bytes\n", ev.NumBytes())
			fmt.Fprintf(out, "errors: %s\n", ev.ErrorMask())
			fmt.Fprint(out, hex.Dump(ev.Bytes()))
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}
