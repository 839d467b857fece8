package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/life-assistant/internal/adapters/notify/fswatch"
	"github.com/bnema/life-assistant/internal/adapters/repo/jsonfile"
	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	chatGreeting = "Life assistant ready. Type 'status' for sequence progress, 'debug on' for action details, 'exit' to quit."
	waitLabel    = "Waiting for the backend..."
)

func newChatCmd(app *app) *cobra.Command {
	var (
		plain bool
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant through the running backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			notifier, stopWatch := app.watchResponses(ctx)
			defer stopWatch()

			frontend := app.newFrontend(!raw, notifier)
			var renderer *glamour.TermRenderer
			if !plain {
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					app.logger.Warn("markdown renderer unavailable", zap.Error(err))
				} else {
					renderer = r
				}
			}

			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), frontend, renderer)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print replies without markdown rendering")
	cmd.Flags().BoolVar(&raw, "raw", false, "Send input as typed, without model interpretation")

	return cmd
}

func runChat(ctx context.Context, in io.Reader, out, spinnerOut io.Writer, frontend *application.Frontend, renderer *glamour.TermRenderer) error {
	if _, err := fmt.Fprintln(out, chatGreeting); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	debug := false
	for {
		if _, err := fmt.Fprint(out, "You: "); err != nil {
			return err
		}
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		var ask func(context.Context) (domain.Response, error)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			_, err := fmt.Fprintln(out, "Goodbye.")
			return err
		case "debug on", "debug off":
			debug = strings.HasSuffix(strings.ToLower(line), "on")
			state := "disabled"
			if debug {
				state = "enabled"
			}
			if _, err := fmt.Fprintf(out, "Debug output %s.\n", state); err != nil {
				return err
			}
			continue
		case "status":
			ask = frontend.Status
		case "pause":
			ask = frontend.Pause
		default:
			ask = func(ctx context.Context) (domain.Response, error) {
				return frontend.Ask(ctx, line)
			}
		}

		resp, err := awaitWithSpinner(ctx, spinnerOut, waitLabel, ask)
		switch {
		case err == nil:
			if err := writeReply(out, renderer, resp, debug); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrResponseTimeout):
			if _, err := fmt.Fprintf(out, "Assistant: %s\n", application.TimeoutMessage); err != nil {
				return err
			}
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			if _, err := fmt.Fprintf(out, "Assistant: Sorry, something went wrong: %v\n", err); err != nil {
				return err
			}
		}
	}
}

func writeReply(out io.Writer, renderer *glamour.TermRenderer, resp domain.Response, debug bool) error {
	text := resp.Text()
	if renderer != nil && text != "" {
		if rendered, err := renderer.Render(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}

	if _, err := fmt.Fprintf(out, "Assistant: %s\n", text); err != nil {
		return err
	}
	if !debug {
		return nil
	}

	for _, action := range resp.Actions {
		mark := "ok"
		detail := fmt.Sprint(action.Result)
		if !action.Success {
			mark = "failed"
			detail = action.Error
		}
		if _, err := fmt.Fprintf(out, "  [%s] %s: %s\n", mark, action.Type, detail); err != nil {
			return err
		}
	}
	if resp.MultiCycleStatus != "" {
		if _, err := fmt.Fprintf(out, "  sequence: %s\n", resp.MultiCycleStatus); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) watchResponses(ctx context.Context) (ports.Notifier, func()) {
	watcher, err := fswatch.New(a.channel.Dir(), []string{jsonfile.ResponseFileName}, a.logger)
	if err != nil {
		a.logger.Debug("response watcher unavailable, polling", zap.Error(err))
		return ports.PollingNotifier{}, func() {}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watcher.Run(watchCtx)
	}()

	return watcher, func() {
		cancel()
		<-done
	}
}
