package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickattributes/pkg/di"
	"github.com/goliatone/go-quickattributes/settings"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or replace the quick finder settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the settings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				snap, err := c.Settings().Load(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), snap)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <file>",
		Short: "Sanitize and save settings from a JSON file",
		Long: `Save settings from a JSON file using the persisted field names
(columns, order_by, hide_empty, show_counts, base_url_type, base_category,
container_title, term_overrides, num_columns). Saving flushes the term cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var input settings.Partial
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				snap, err := c.Settings().Save(ctx, input)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), snap)
			})
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
