package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickattributes/label"
	"github.com/goliatone/go-quickattributes/pkg/di"
)

func newColumnsCommand(a *app) *cobra.Command {
	var lang, locale string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the quick finder view as JSON",
		Long: `Print the columns, headings, labels and filter links for one render.

Examples:
  # Default language
  quickattrs columns

  # Italian storefront
  quickattrs columns --lang it

  # Language taken from a locale
  quickattrs columns --locale pt_BR`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lang == "" && locale != "" {
				lang = label.LanguageFromLocale(locale)
			}
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				view, err := c.Finder().Columns(ctx, lang)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), view)
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language code (default is default_language)")
	cmd.Flags().StringVar(&locale, "locale", "", "locale used to derive the language when --lang is empty")
	return cmd
}

func newFlushCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop every cached term list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				if err := c.TermCache().InvalidateAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "term cache flushed")
				return nil
			})
		},
	}
}
