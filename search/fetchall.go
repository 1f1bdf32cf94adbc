// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"context"
	"sync"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/xynehq/vespa-go/vespa"
	"github.com/xynehq/vespa-go/yql"
)

// Fan-out defaults for FetchAllByName.
const (
	DefaultFetchBatchSize   = 400
	DefaultFetchConcurrency = 3
)

// FetchAllOptions tune the batched fan-out fetch.
type FetchAllOptions struct {
	// BatchSize is the hit count per batch query.
	BatchSize int
	// Concurrency bounds the number of in-flight batch queries.
	Concurrency int
}

func (o FetchAllOptions) withDefaults() FetchAllOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultFetchBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultFetchConcurrency
	}
	return o
}

// FetchAllByName retrieves every document in a schema whose field
// matches the given value. A count query sizes the result, then the
// batches run concurrently under the configured limit, each ordered by
// descending createdAt. Results are concatenated in completion order.
// The first failing batch fails the whole operation; no partial result
// is returned.
func (s *Service) FetchAllByName(ctx context.Context, schema, field, value string, opts FetchAllOptions) ([]vespa.Hit, error) {
	opts = opts.withDefaults()

	match := yql.Contains(field, value)
	countYQL, err := yql.NewBuilder().
		From(schema).
		Where(match).
		Limit(0).
		Build()
	if err != nil {
		return nil, err
	}
	countResp, err := s.dispatch(ctx, "fetchAllByName.count", []string{schema}, vespa.Payload{
		vespa.KeyYQL:            countYQL,
		vespa.KeyRankingProfile: RankProfileUnranked,
		vespa.KeyHits:           0,
		vespa.KeyTimeout:        vespa.DefaultTimeout,
	})
	if err != nil {
		return nil, err
	}
	total := countResp.Root.Fields.TotalCount
	if total == 0 {
		return nil, nil
	}

	batches := (total + opts.BatchSize - 1) / opts.BatchSize

	var mu sync.Mutex
	var hits []vespa.Hit

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := 0; i < batches; i++ {
		offset := i * opts.BatchSize
		g.Go(func() error {
			batchYQL, err := yql.NewBuilder().
				From(schema).
				Where(match).
				OrderBy(FieldCreatedAt, yql.Desc).
				Limit(opts.BatchSize).
				Offset(offset).
				Build()
			if err != nil {
				return err
			}
			resp, err := s.dispatch(ctx, "fetchAllByName.batch", []string{schema}, vespa.Payload{
				vespa.KeyYQL:            batchYQL,
				vespa.KeyRankingProfile: RankProfileUnranked,
				vespa.KeyHits:           opts.BatchSize,
				vespa.KeyOffset:         offset,
				vespa.KeyMaxHits:        opts.BatchSize,
				vespa.KeyMaxOffset:      total,
				vespa.KeyTimeout:        vespa.DefaultTimeout,
			})
			if err != nil {
				return oops.With("offset", offset).Wrap(err)
			}
			mu.Lock()
			hits = append(hits, resp.Root.Children...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}
