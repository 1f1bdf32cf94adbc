// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xynehq/vespa-go/pkg/errutil"
	"github.com/xynehq/vespa-go/search"
)

// NewSearchCmd creates the search subcommand.
func NewSearchCmd() *cobra.Command {
	var (
		email      string
		app        string
		entity     string
		limit      int
		offset     int
		excludeIDs []string
		since      string
		until      string
	)

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Run a hybrid search across the connected corpora",
		Long: `Run a permission-scoped hybrid (lexical + vector) search. With --app the
search narrows to that application's schemas; otherwise every configured
corpus is queried.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			tr, err := parseTimeRange(since, until)
			if err != nil {
				return err
			}

			resp, err := deps.Service.Search(cmd.Context(),
				strings.Join(args, " "), email, search.App(app), entity,
				search.Options{
					Limit:       limit,
					Offset:      offset,
					TimeRange:   tr,
					ExcludedIDs: excludeIDs,
				})
			if err != nil {
				errutil.LogError(deps.Logger, "search failed", err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Root.Children)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "principal email the results are scoped to")
	cmd.Flags().StringVar(&app, "app", "", "restrict to one application (e.g. gmail, slack)")
	cmd.Flags().StringVar(&entity, "entity", "", "restrict to one entity kind")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum hits (0 uses the configured page size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().StringSliceVar(&excludeIDs, "exclude-id", nil, "document ids to drop from the result")
	cmd.Flags().StringVar(&since, "since", "", "lower time bound (RFC3339 or unix millis)")
	cmd.Flags().StringVar(&until, "until", "", "upper time bound (RFC3339 or unix millis)")

	return cmd
}

// NewGroupsCmd creates the groups subcommand, aggregating match counts
// by app and entity instead of returning hits.
func NewGroupsCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "groups <query>...",
		Short: "Count matches per app and entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			resp, err := deps.Service.GroupSearch(cmd.Context(),
				strings.Join(args, " "), email, search.Options{})
			if err != nil {
				errutil.LogError(deps.Logger, "group search failed", err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Root.Children)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "principal email the counts are scoped to")

	return cmd
}

// NewSuggestCmd creates the suggest subcommand.
func NewSuggestCmd() *cobra.Command {
	var (
		email string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Autocomplete a query prefix from titles, people and past queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			hits, err := deps.Service.Autocomplete(cmd.Context(), args[0], email, limit)
			if err != nil {
				errutil.LogError(deps.Logger, "autocomplete failed", err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), hits)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "principal email the suggestions are scoped to")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (0 uses the configured page size)")

	return cmd
}
