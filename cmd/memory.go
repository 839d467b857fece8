package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/adapters/changelog/sqlite"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/cobra"
)

func newMemoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Read and edit the assistant's memory documents",
	}

	cmd.AddCommand(
		newMemoryGetCmd(app),
		newMemorySetCmd(app),
		newMemorySearchCmd(app),
		newMemoryChangesCmd(app),
	)

	return cmd
}

func newMemoryGetCmd(app *app) *cobra.Command {
	var (
		kind   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "get [dotted.path]",
		Short: "Print a memory document or one value inside it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == formatText {
				format = formatJSON
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			docKind := domain.DocumentKind(kind)
			if err := docKind.Validate(); err != nil {
				return err
			}

			var path []string
			if len(args) == 1 {
				path = domain.SplitPath(args[0])
			}

			value, ok, err := app.memory.Get(cmd.Context(), docKind, path)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no value at %s in %s memory", strings.Join(path, "."), docKind)
			}
			if m, isMap := value.(map[string]any); isMap && len(path) == 0 {
				value = withoutRevision(m)
			}

			return writeStructured(cmd.OutOrStdout(), format, value)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.DocumentUser), "Document: user, system or backend")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or yaml")

	return cmd
}

func newMemorySetCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "set <dotted.path> <value>",
		Short: "Set one value in user or system memory",
		Long:  "Set one value in user or system memory. The value is parsed as JSON when possible and stored as a string otherwise.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docKind := domain.DocumentKind(kind)
			if err := docKind.Validate(); err != nil {
				return err
			}
			if docKind == domain.DocumentBackend {
				return fmt.Errorf("set backend memory: %w", domain.ErrBackendPartition)
			}

			path := domain.SplitPath(args[0])
			if len(path) == 0 {
				return fmt.Errorf("invalid path %q", args[0])
			}

			if err := app.memory.SetPath(cmd.Context(), docKind, path, parseValue(args[1])); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "updated %s in %s memory\n", strings.Join(path, "."), docKind)
			return err
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.DocumentUser), "Document: user or system")

	return cmd
}

func newMemorySearchCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find keys and values containing query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docKind := domain.DocumentKind(kind)
			if err := docKind.Validate(); err != nil {
				return err
			}

			matches, err := app.memory.Search(cmd.Context(), docKind, args[0])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return err
			}

			return writeStructured(cmd.OutOrStdout(), formatJSON, matches)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.DocumentUser), "Document: user, system or backend")

	return cmd
}

func newMemoryChangesCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show the most recent entries of the action change log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqlite.NewStore(app.cfg)
			if err != nil {
				return fmt.Errorf("open change log: %w", err)
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Tail(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, err := fmt.Fprintln(out, "Change log is empty.")
				return err
			}
			for _, entry := range entries {
				if _, err := fmt.Fprintf(out, "[%s] Action: %s, Result: %s\n", entry.RecordedAt, entry.Action, entry.Result); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}

func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}

	return raw
}

func withoutRevision(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		if key == domain.RevisionKey {
			continue
		}
		out[key] = value
	}

	return out
}
