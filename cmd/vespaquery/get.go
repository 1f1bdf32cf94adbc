// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/xynehq/vespa-go/pkg/errutil"
	"github.com/xynehq/vespa-go/search"
)

// NewGetCmd creates the get subcommand.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <schema> <docid>",
		Short: "Fetch one document by id via the document API",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			doc, err := deps.Client.GetDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				errutil.LogError(deps.Logger, "document fetch failed", err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	return cmd
}

// NewFetchAllCmd creates the fetchall subcommand.
func NewFetchAllCmd() *cobra.Command {
	var (
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "fetchall <schema> <field> <value>",
		Short: "Fetch every document matching a field value, in parallel batches",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			hits, err := deps.Service.FetchAllByName(cmd.Context(),
				args[0], args[1], args[2],
				search.FetchAllOptions{
					BatchSize:   batchSize,
					Concurrency: concurrency,
				})
			if err != nil {
				errutil.LogError(deps.Logger, "fetchall failed", err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), hits)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch", search.DefaultFetchBatchSize, "hits per batch query")
	cmd.Flags().IntVar(&concurrency, "concurrency", search.DefaultFetchConcurrency, "parallel batch queries")

	return cmd
}
