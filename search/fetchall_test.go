// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xynehq/vespa-go/vespa"
)

// isCountQuery tells the sizing query apart from the batch queries.
func isCountQuery(p vespa.Payload) bool {
	hits, _ := p[vespa.KeyHits].(int)
	return hits == 0
}

func TestFetchAllByName_BatchesAndAggregates(t *testing.T) {
	f := newFakeTransport()
	f.searchFn = func(p vespa.Payload) (*vespa.SearchResponse, error) {
		if isCountQuery(p) {
			return hitsResponse(900), nil
		}
		return hitsResponse(900, vespa.Hit{ID: "h"}), nil
	}
	svc := testService(f)

	hits, err := svc.FetchAllByName(context.Background(), SchemaDataSourceFile, "fileName", "report.pdf", FetchAllOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	// One count query plus ceil(900/400) batches.
	assert.Equal(t, 4, f.payloadCount())

	var offsets []int
	for _, p := range f.payloads {
		if isCountQuery(p) {
			assert.Contains(t, p[vespa.KeyYQL], "fileName contains 'report.pdf'")
			continue
		}
		offset, _ := p[vespa.KeyOffset].(int)
		offsets = append(offsets, offset)
		assert.Equal(t, DefaultFetchBatchSize, p[vespa.KeyHits])
		assert.Equal(t, DefaultFetchBatchSize, p[vespa.KeyMaxHits])
		assert.Equal(t, 900, p[vespa.KeyMaxOffset])
		assert.Contains(t, p[vespa.KeyYQL], " order by createdAt desc limit 400 offset ")
	}
	sort.Ints(offsets)
	assert.Equal(t, []int{0, 400, 800}, offsets)
}

func TestFetchAllByName_NoMatches(t *testing.T) {
	f := newFakeTransport()
	f.searchFn = func(p vespa.Payload) (*vespa.SearchResponse, error) {
		return hitsResponse(0), nil
	}
	svc := testService(f)

	hits, err := svc.FetchAllByName(context.Background(), SchemaDataSourceFile, "fileName", "missing", FetchAllOptions{})
	require.NoError(t, err)
	assert.Nil(t, hits)
	assert.Equal(t, 1, f.payloadCount())
}

func TestFetchAllByName_ConcurrencyBounded(t *testing.T) {
	var inflight, peak atomic.Int32

	f := newFakeTransport()
	f.searchFn = func(p vespa.Payload) (*vespa.SearchResponse, error) {
		if isCountQuery(p) {
			return hitsResponse(2000), nil
		}
		cur := inflight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inflight.Add(-1)
		return hitsResponse(2000, vespa.Hit{ID: "h"}), nil
	}
	svc := testService(f)

	hits, err := svc.FetchAllByName(context.Background(), SchemaDataSourceFile, "fileName", "big", FetchAllOptions{
		BatchSize:   100,
		Concurrency: 3,
	})
	require.NoError(t, err)
	assert.Len(t, hits, 20)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestFetchAllByName_FailFast(t *testing.T) {
	f := newFakeTransport()
	f.searchFn = func(p vespa.Payload) (*vespa.SearchResponse, error) {
		if isCountQuery(p) {
			return hitsResponse(900), nil
		}
		if offset, _ := p[vespa.KeyOffset].(int); offset == 400 {
			return nil, errors.New("backend hiccup")
		}
		return hitsResponse(900, vespa.Hit{ID: "h"}), nil
	}
	svc := testService(f)

	_, err := svc.FetchAllByName(context.Background(), SchemaDataSourceFile, "fileName", "report.pdf", FetchAllOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend hiccup")
}
