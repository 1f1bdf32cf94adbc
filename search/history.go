// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/xynehq/vespa-go/yql"
)

// HistoryRecorder upserts the principal's query history into the
// user_query schema. Each (email, normalized query) pair maps to one
// document; repeats bump its count and timestamp, but an existing record
// is touched at most once per update interval.
type HistoryRecorder struct {
	transport Transport
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewHistoryRecorder creates a recorder with the given minimum update
// interval.
func NewHistoryRecorder(transport Transport, interval time.Duration, logger *slog.Logger) *HistoryRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryRecorder{
		transport: transport,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// historyDocID derives a stable document id from the principal and the
// normalized query text.
func historyDocID(email, normalized string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}

// normalizeQuery collapses whitespace and case so trivially different
// spellings share one record.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Record upserts the history document for the given query.
func (r *HistoryRecorder) Record(ctx context.Context, email, query string) error {
	normalized := normalizeQuery(query)
	if normalized == "" || email == "" {
		return nil
	}
	docID := historyDocID(email, normalized)
	nowMillis := r.now().UnixMilli()

	existing, err := r.transport.GetDocumentOrNil(ctx, SchemaUserQuery, docID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.transport.Insert(ctx, SchemaUserQuery, docID, map[string]any{
			yql.FieldDocID: docID,
			yql.FieldOwner: email,
			FieldQueryText: normalized,
			FieldCreatedAt: nowMillis,
			FieldTimestamp: nowMillis,
			"count":        1,
		})
	}

	last := numField(existing.Fields[FieldTimestamp])
	if nowMillis-last < r.interval.Milliseconds() {
		return nil
	}
	count := numField(existing.Fields["count"])
	return r.transport.UpdateDocument(ctx, SchemaUserQuery, docID, map[string]any{
		FieldTimestamp: nowMillis,
		"count":        count + 1,
	})
}

// numField reads a numeric document field. Decoded JSON yields float64,
// freshly written fields may still be integers.
func numField(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
