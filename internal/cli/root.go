// Package cli implements the statslog command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/statsevent/pkg/statsevent/atoms"
	"github.com/randalmurphal/statsevent/pkg/statsevent/config"
)

// Version is the statslog version.
const Version = "0.1.0"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	network    string
	address    string
	atomsFile  string
	logLevel   string
}

// NewRootCommand builds the statslog command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "statslog",
		Short: "Encode and send stats events",
		Long: `statslog encodes stats events in the collector's binary format.

It can send an event to the collector socket, print the encoded payload
without sending it, or re-send events spooled after failed deliveries.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file (.yaml, .yml or .json)")
	flags.StringVar(&opts.network, "network", "", "Collector socket network (unixgram, udp)")
	flags.StringVar(&opts.address, "address", "", "Collector socket address")
	flags.StringVar(&opts.atomsFile, "atoms", "", "Atom catalog file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newEmitCommand(opts))
	root.AddCommand(newDumpCommand(opts))
	root.AddCommand(newFlushCommand(opts))

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(fmt.Sprintf("statslog version %s\n", Version))
	return root
}

// settings resolves Settings from the config file and flag overrides.
func (o *globalOptions) settings() (config.Settings, error) {
	cfg := config.New(nil)
	if o.configFile != "" {
		var err error
		if cfg, err = config.FromFile(o.configFile); err != nil {
			return config.Settings{}, err
		}
	}

	s, err := config.LoadSettings(cfg)
	if err != nil {
		return config.Settings{}, err
	}
	if o.network != "" {
		s.SocketNetwork = o.network
	}
	if o.address != "" {
		s.SocketAddress = o.address
	}
	if o.atomsFile != "" {
		s.AtomsFile = o.atomsFile
	}
	if o.logLevel != "" {
		if err := s.LogLevel.UnmarshalText([]byte(o.logLevel)); err != nil {
			return config.Settings{}, fmt.Errorf("--log-level: %w", err)
		}
	}
	return s, s.Validate()
}

// catalog loads the atom catalog, or returns an empty one.
func catalog(s config.Settings) (*atoms.Catalog, error) {
	if s.AtomsFile == "" {
		return atoms.NewCatalog(), nil
	}
	return atoms.LoadFile(s.AtomsFile)
}

// newLogger builds the structured logger described by the settings.
func newLogger(w io.Writer, s config.Settings) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
