package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/cobra"
)

func newSequenceCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Inspect and manage multi-cycle task sequences",
	}

	cmd.AddCommand(
		newSequenceListCmd(app),
		newSequenceCreateCmd(app),
		newSequenceFailCmd(app),
	)

	return cmd
}

func newSequenceListCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.status.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(status.ActiveSequences) == 0 {
				if _, err := fmt.Fprintln(out, "No active task sequences."); err != nil {
					return err
				}
			}
			for _, seq := range status.ActiveSequences {
				marker := " "
				if seq.ID == status.CurrentSequenceID {
					marker = "*"
				}
				if _, err := fmt.Fprintf(out, "%s %s [%s, %s] %s\n", marker, seq.ID, seq.Status, seq.Priority, application.Progress(seq)); err != nil {
					return err
				}
			}

			if !all {
				return nil
			}
			for _, seq := range status.CompletedSequences {
				if _, err := fmt.Fprintf(out, "  %s [%s] %s\n", seq.ID, seq.Status, application.Progress(seq)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include finished sequences")

	return cmd
}

func newSequenceCreateCmd(app *app) *cobra.Command {
	var (
		name        string
		description string
		priority    string
		tasks       []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task sequence the backend works through one step per cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps := make([]domain.SequenceTask, 0, len(tasks))
			for _, task := range tasks {
				if task = strings.TrimSpace(task); task != "" {
					steps = append(steps, domain.SequenceTask(task))
				}
			}
			if len(steps) == 0 {
				return errors.New("at least one --task is required")
			}

			seq, err := app.sequences.Create(cmd.Context(), application.CreateSequenceInput{
				Name:        name,
				Description: description,
				Priority:    domain.ParsePriority(priority),
				Tasks:       steps,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created sequence %s (%d steps)\n", seq.ID, len(seq.Tasks))
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Sequence name")
	cmd.Flags().StringVar(&description, "description", "", "Sequence description")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority: high, medium or low")
	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Step description (repeat in order)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newSequenceFailCmd(app *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "fail <sequence-id>",
		Short: "Mark an active sequence as failed and archive it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := app.sequences.Fail(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sequence %s marked %s\n", seq.ID, seq.Status)
			return err
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "failed manually", "Reason recorded on the sequence")

	return cmd
}
