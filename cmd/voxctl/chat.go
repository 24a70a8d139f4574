package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/voxestate/internal/transport"
)

type chatOptions struct {
	audio       bool
	open        bool
	language    string
	model       string
	temperature float64
	maxTokens   int
	json        bool
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat [text...]",
		Short: "Ask the real estate assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc transport.Service) error {
				return runChat(ctx, cmd, svc, opts, strings.Join(args, " "))
			})
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.audio, "audio", true, "render the answer as speech")
	f.BoolVar(&opts.open, "open", false, "open URLs found in the answer")
	f.StringVar(&opts.language, "language", "", "language code for speech (default from config)")
	f.StringVar(&opts.model, "model", "", "LLM model (default from config)")
	f.Float64Var(&opts.temperature, "temperature", 0, "sampling temperature 0.0-2.0 (default from config)")
	f.IntVar(&opts.maxTokens, "max-tokens", 0, "completion token ceiling (default from config)")
	f.BoolVar(&opts.json, "json", false, "print the full JSON response")
	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command, svc transport.Service, opts *chatOptions, text string) error {
	req := svc.NewChatRequest(text)
	req.GenerateAudio = opts.audio
	req.OpenURLs = opts.open
	if opts.language != "" {
		req.Language = opts.language
	}
	if opts.model != "" {
		req.Model = opts.model
	}
	if cmd.Flags().Changed("temperature") {
		req.Temperature = opts.temperature
	}
	if opts.maxTokens != 0 {
		req.MaxTokens = opts.maxTokens
	}

	turn, err := svc.Process(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return printJSON(out, turn.Response())
	}

	fmt.Fprintln(out, turn.AnswerText)
	for _, u := range turn.URLs {
		fmt.Fprintf(out, "link: %s\n", u)
	}
	if turn.Audio != nil {
		fmt.Fprintf(out, "audio: %s\n", turn.Audio.StoragePath)
	} else if opts.audio {
		fmt.Fprintln(cmd.ErrOrStderr(), "audio: unavailable (see logs)")
	}
	return nil
}
