package cmd

import (
	"fmt"

	statusadapter "github.com/bnema/life-assistant/internal/adapters/render/status"
	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/config"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sequences, queue and backend activity from memory files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			status, err := app.status.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, status, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json or yaml")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, status application.Status, format string) error {
	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, status)
	}

	staleAfter := 2 * config.Duration(app.cfg, config.KeySystemCheckInterval, application.DefaultSystemCheckInterval)
	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{
		Now:        app.now(),
		StaleAfter: staleAfter,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
