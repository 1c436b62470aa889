package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickattributes/pkg/di"
	"github.com/goliatone/go-quickattributes/termcache"
	"github.com/goliatone/go-quickattributes/termstore"
)

func newSchemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the term tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				if err := termstore.CreateSchema(ctx, c.DB()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
				return nil
			})
		},
	}
}

func newTermEventCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "term-event <created|edited|deleted> <taxonomy> <term-id>",
		Short: "Report a term mutation so stale lists are flushed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := termcache.ParseEventKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[2])
			if err != nil {
				return err
			}

			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				flushed, err := c.TermCache().HandleTermEvent(ctx, termcache.TermEvent{
					Kind:     kind,
					TermID:   id,
					Taxonomy: args[1],
				})
				if err != nil {
					return err
				}
				if flushed {
					fmt.Fprintln(cmd.OutOrStdout(), "term cache flushed")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "not an attribute taxonomy, ignored")
				}
				return nil
			})
		},
	}
}

func newTaxonomyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Manage attribute taxonomies",
	}

	add := &cobra.Command{
		Use:   "add <name> <label>",
		Short: "Register an attribute taxonomy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				return c.TermStore().AddTaxonomy(ctx, args[0], args[1])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List attribute taxonomies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				taxonomies, err := c.TermStore().AttributeTaxonomies(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), taxonomies)
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newTermCommand(a *app) *cobra.Command {
	var (
		taxonomy string
		slug     string
		count    int
		priority int
	)

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Manage terms",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a term and flush cached lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := termstore.TermModel{
				Name:     args[0],
				Slug:     slug,
				Taxonomy: taxonomy,
				Count:    count,
			}
			if model.Slug == "" {
				model.Slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(args[0]), " ", "-"))
			}
			if cmd.Flags().Changed("priority") {
				model.Priority = &priority
			}

			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				rec, err := c.TermStore().AddTerm(ctx, model)
				if err != nil {
					return err
				}
				if _, err := c.TermCache().HandleTermEvent(ctx, termcache.TermEvent{
					Kind:     termcache.TermCreated,
					TermID:   rec.ID,
					Taxonomy: rec.Taxonomy,
				}); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rec)
			})
		},
	}
	add.Flags().StringVarP(&taxonomy, "taxonomy", "t", "", "taxonomy the term belongs to")
	add.Flags().StringVar(&slug, "slug", "", "term slug (default is the lowercased name)")
	add.Flags().IntVar(&count, "count", 0, "number of products using the term")
	add.Flags().IntVar(&priority, "priority", 0, "menu order; unset terms sort last")
	_ = add.MarkFlagRequired("taxonomy")

	cmd.AddCommand(add)
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerrors.New("term id must be a positive integer: "+raw, goerrors.CategoryBadInput).
			WithTextCode("INVALID_TERM_ID")
	}
	return id, nil
}
