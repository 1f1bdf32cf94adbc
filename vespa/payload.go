// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

// Package vespa is the HTTP transport for the Vespa query and document
// APIs. It accepts fully-prepared payloads and performs no query
// construction of its own.
package vespa

// Payload is the body of a query-API request: an unordered map of
// string-keyed fields.
type Payload map[string]any

// Recognized payload keys.
const (
	KeyYQL                 = "yql"
	KeyQuery               = "query"
	KeyEmail               = "email"
	KeyHits                = "hits"
	KeyOffset              = "offset"
	KeyTimeout             = "timeout"
	KeyRankingProfile      = "ranking.profile"
	KeyRankingListFeatures = "ranking.listFeatures"
	KeyTracelevel          = "tracelevel"
	KeyPresentationSummary = "presentation.summary"
	KeyInputEmbedding      = "input.query(e)"
	KeyInputAlpha          = "input.query(alpha)"
	KeyInputRecencyDecay   = "input.query(recency_decay_rate)"
	KeyInputIsIntentSearch = "input.query(is_intent_search)"
	KeyMaxHits             = "maxHits"
	KeyMaxOffset           = "maxOffset"
	KeyApp                 = "app"
	KeyEntity              = "entity"
	KeyChannelID           = "channelId"
	KeyUserID              = "userId"
)

// EmbedQueryExpr asks Vespa to embed the bound query text server-side.
const EmbedQueryExpr = "embed(@query)"

// DefaultTimeout is applied when a payload carries no timeout.
const DefaultTimeout = "30s"

// Clone returns a shallow copy so callers can fork a base payload.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SetDefault sets key to value only when the key is absent.
func (p Payload) SetDefault(key string, value any) {
	if _, ok := p[key]; !ok {
		p[key] = value
	}
}
