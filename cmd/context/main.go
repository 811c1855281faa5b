package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"context-assistant/internal/app"
	"context-assistant/internal/apperr"
	"context-assistant/internal/prompt"
	"context-assistant/internal/source"
)

type cliOptions struct {
	file      string
	clipboard bool
	intent    string
	style     string
	length    string
	noLLM     bool
	apiKey    string
	model     string
	copy      bool
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newRootCmd(deps, stdinIsTerminal).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
}

func newRootCmd(deps app.Deps, interactive func() bool) *cobra.Command {
	var opts cliOptions
	cmd := &cobra.Command{
		Use:   "context [text]",
		Short: "Answer or reply to selected text",
		Long: `context reads a piece of selected text, decides whether it is a
conversation or plain information, and prints a single paste-ready answer
in the language of the input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), deps, opts, source.Request{
				File:        opts.file,
				Clipboard:   opts.clipboard,
				Args:        args,
				Stdin:       cmd.InOrStdin(),
				Interactive: interactive(),
				Prompt:      cmd.ErrOrStderr(),
			}, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "read input from a text or PDF file")
	flags.BoolVarP(&opts.clipboard, "clipboard", "c", false, "read input from the clipboard")
	flags.StringVar(&opts.intent, "intent", "", "what to do with the text (e.g. \"reply politely\")")
	flags.StringVar(&opts.style, "style", "", "tone of the answer (e.g. formal, casual)")
	flags.StringVar(&opts.length, "length", "", "answer length (short/medium/long)")
	flags.BoolVar(&opts.noLLM, "no-llm", false, "skip the completion service and print the offline summary")
	flags.StringVar(&opts.apiKey, "api-key", "", "API key (default: $OPENAI_API_KEY)")
	flags.StringVar(&opts.model, "model", "", "model name (default: $LLM_MODEL)")
	flags.BoolVar(&opts.copy, "copy", false, "also copy the result to the clipboard")

	return cmd
}

func run(ctx context.Context, deps app.Deps, opts cliOptions, req source.Request, stdout io.Writer) error {
	length, err := prompt.ParseLength(opts.length)
	if err != nil {
		return err
	}
	text, err := source.Read(req, deps.Clipboard)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return apperr.Newf(apperr.KindInput, "read input", "no text provided")
	}

	if opts.model != "" {
		deps.Config.LLMModel = opts.model
	}
	key := opts.apiKey
	if key == "" {
		key = deps.Config.OpenAIKey
	}
	p, err := app.NewPipeline(deps, key, opts.noLLM)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, text, prompt.Options{
		Intent: opts.intent,
		Style:  opts.style,
		Length: length,
	})
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(stdout, res.Text); err != nil {
		return apperr.New(apperr.KindOutput, "write result", err)
	}
	if opts.copy {
		if err := deps.Clipboard.WriteText(res.Text); err != nil {
			return apperr.New(apperr.KindOutput, "copy result", err)
		}
	}
	return nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
