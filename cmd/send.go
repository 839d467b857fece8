package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/cobra"
)

func newSendCmd(app *app) *cobra.Command {
	var (
		requestType string
		asJSON      bool
		noWait      bool
		interpret   bool
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one request to the backend and print its response",
		Long:  "Send one request to the backend. A message that parses as a JSON object is sent as a structured directive, for example '{\"action\":\"get_time\"}'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := domain.RequestType(strings.ToLower(strings.TrimSpace(requestType)))
			switch typ {
			case domain.RequestTypeCommand:
				if len(args) == 0 {
					return errors.New("send requires a message for command requests")
				}
			case domain.RequestTypeStatus, domain.RequestTypePause:
			default:
				return fmt.Errorf("unsupported request type %q", requestType)
			}

			ctx := cmd.Context()
			notifier, stopWatch := app.watchResponses(ctx)
			defer stopWatch()
			frontend := app.newFrontend(interpret, notifier)

			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				message = string(typ)
			}
			if noWait {
				req, err := frontend.Send(ctx, typ, requestContent(message))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), req.ID)
				return err
			}

			resp, err := awaitWithSpinner(ctx, cmd.ErrOrStderr(), waitLabel, func(ctx context.Context) (domain.Response, error) {
				if interpret && typ == domain.RequestTypeCommand {
					return frontend.Ask(ctx, message)
				}
				return frontend.Roundtrip(ctx, typ, requestContent(message))
			})
			if errors.Is(err, domain.ErrResponseTimeout) {
				return fmt.Errorf("%s: %w", application.TimeoutMessage, err)
			}
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeStructured(cmd.OutOrStdout(), formatJSON, resp); err != nil {
					return err
				}
			} else if err := writeReply(cmd.OutOrStdout(), nil, resp, true); err != nil {
				return err
			}

			if resp.Failed() {
				return fmt.Errorf("request %s failed", resp.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&requestType, "type", string(domain.RequestTypeCommand), "Request type: command, status or pause")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw response as JSON")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Write the request and print its id without waiting")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "Turn the message into a directive with the frontend model first")

	return cmd
}

func requestContent(message string) any {
	if strings.HasPrefix(message, "{") {
		var directive map[string]any
		if err := json.Unmarshal([]byte(message), &directive); err == nil {
			return directive
		}
	}
	if message == "" {
		return nil
	}

	return message
}
