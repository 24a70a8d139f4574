// Voxctl runs the voxestate pipeline in-process for one-off requests.
//
// Usage:
//
//	voxctl chat "Tell me about 3-bedroom houses in Dubai"
//	voxctl speak --language ar "مرحبا"
//	voxctl languages
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nadzzz/voxestate/internal/app"
	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/transport"
)

// version is set at build time via ldflags.
var version = "dev"

var configFile string

// loadService builds the pipeline from configuration. Replaced in tests.
var loadService = func(ctx context.Context) (transport.Service, func() error, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	config.SetupLogging(cfg.Logging)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a.Pipeline, a.Close, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voxctl",
		Short:         "Run voxestate requests from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `voxctl runs the same pipeline as the voxestate daemon without starting a server.

Configuration is read the same way: .env, the config file and VOXESTATE_*
environment variables.`,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")

	root.AddCommand(newChatCmd(), newSpeakCmd(), newLanguagesCmd())
	return root
}

// withService runs fn against a freshly built service and closes it afterwards.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc transport.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
