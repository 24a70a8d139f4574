package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/voxestate/internal/transport"
)

func newSpeakCmd() *cobra.Command {
	var language, voice string
	cmd := &cobra.Command{
		Use:   "speak [text...]",
		Short: "Convert text to speech and print the output file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc transport.Service) error {
				req := svc.NewTTSRequest(strings.Join(args, " "))
				if language != "" {
					req.Language = language
				}
				req.Voice = voice

				art, err := svc.Speak(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", art.StoragePath, art.PublicURL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "language code (default from config)")
	cmd.Flags().StringVar(&voice, "voice", "", "voice hint; engines may ignore it")
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported speech languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc transport.Service) error {
				for _, l := range svc.Languages() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.Code, l.Name)
				}
				return nil
			})
		},
	}
}
