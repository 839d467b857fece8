package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/cobra"
)

func newQueueCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Hand work to the backend and inspect the processing queue",
	}

	cmd.AddCommand(
		newQueueAddCmd(app),
		newQueueListCmd(app),
		newQueueCompleteCmd(app),
		newQueueConstantCmd(app),
	)

	return cmd
}

func newQueueAddCmd(app *app) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Append a task to the task buffer for the backend to pick up",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := domain.Task{
				Description: strings.TrimSpace(strings.Join(args, " ")),
				Priority:    domain.ParsePriority(priority),
				Type:        "manual",
				AddedAt:     domain.FormatTimestamp(app.now()),
			}
			if err := task.Validate(); err != nil {
				return err
			}

			if err := app.channel.AppendTaskBuffer(cmd.Context(), task); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "buffered task: %s\n", task.Description)
			return err
		},
	}

	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority: high, medium or low")

	return cmd
}

func newQueueListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processing queue entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := app.queue.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				_, err := fmt.Fprintln(out, "Queue is empty.")
				return err
			}
			for i, item := range items {
				if _, err := fmt.Fprintf(out, "%d %s [%s, %s] %s\n", i, item.ID, item.Status, item.Task.Priority, item.Task.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newQueueCompleteCmd(app *app) *cobra.Command {
	var result string

	cmd := &cobra.Command{
		Use:   "complete <index>",
		Short: "Finish the queue entry at index and move it to history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid queue index %q", args[0])
			}

			item, err := app.queue.MarkComplete(cmd.Context(), index, result)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "completed %s: %s\n", item.ID, item.Task.Description)
			return err
		},
	}

	cmd.Flags().StringVar(&result, "result", "Completed manually", "Result recorded in the queue history")

	return cmd
}

func newQueueConstantCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constant",
		Short: "Manage recurring tasks the backend schedules on its own",
	}

	var (
		interval string
		priority string
	)
	add := &cobra.Command{
		Use:   "add <description>",
		Short: "Register a recurring task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			every := domain.Interval(strings.ToLower(strings.TrimSpace(interval)))
			switch every {
			case domain.IntervalEveryCycle, domain.IntervalHourly, domain.IntervalDaily, domain.IntervalWeekly:
			default:
				return fmt.Errorf("unsupported interval %q", interval)
			}

			task, added, err := app.constants.Add(cmd.Context(), domain.ConstantTask{
				Description: strings.Join(args, " "),
				Interval:    every,
				Priority:    domain.ParsePriority(priority),
			})
			if err != nil {
				return err
			}
			if !added {
				return errors.New("constant task already exists: " + task.Description)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added constant task: %s (%s)\n", task.Description, task.Interval)
			return err
		},
	}
	add.Flags().StringVar(&interval, "interval", string(domain.IntervalDaily), "Interval: every_cycle, hourly, daily or weekly")
	add.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority: high, medium or low")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recurring tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := app.constants.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, err := fmt.Fprintln(out, "No constant tasks.")
				return err
			}
			for _, task := range tasks {
				last := "never"
				if task.LastExecuted != nil {
					last = *task.LastExecuted
				}
				if _, err := fmt.Fprintf(out, "%s [%s, %s] last run: %s\n", task.Description, task.Interval, task.Priority, last); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)

	return cmd
}
