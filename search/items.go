// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"context"

	"github.com/samber/oops"

	"github.com/xynehq/vespa-go/vespa"
	"github.com/xynehq/vespa-go/yql"
)

// existenceChunkSize bounds the id list of a single existence query.
const existenceChunkSize = 500

// ItemsParams parameterize filter-only retrieval. No ranking applies;
// results are ordered by the schema's time field.
type ItemsParams struct {
	Schema      string
	Email       string
	App         App
	Entity      string
	TimeRange   *TimeRange
	Limit       int
	Offset      int
	Asc         bool
	ExcludedIDs []string
	Intent      *Intent
}

// GetItems retrieves documents by filters alone: app/entity/time/intent
// conditions, unranked, ordered by the schema's time field.
func (s *Service) GetItems(ctx context.Context, params ItemsParams) (*vespa.SearchResponse, error) {
	if params.Schema == "" {
		return nil, oops.Code(yql.CodeValidation).Errorf("schema is required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.cfg.Page
	}

	timeField := timeFieldForSchema(params.Schema)
	parts := []yql.Condition{timeFilter(timeField, params.TimeRange)}
	if c := params.Intent.Condition(); c != nil {
		parts = append(parts, c)
	}
	root := conjoin(parts...)
	if root == nil {
		// Filter-only retrieval still needs permission scoping even when
		// no other filter applies.
		root = yql.AndScoped(itemsPolicy(params.Schema), yql.Raw("true"))
	} else {
		root = yql.AndScoped(itemsPolicy(params.Schema), root)
	}

	dir := yql.Desc
	if params.Asc {
		dir = yql.Asc
	}
	builder := yql.NewBuilder().
		From(params.Schema).
		Where(root).
		ExcludeDocIDs(params.ExcludedIDs).
		OrderBy(timeField, dir).
		Limit(limit).
		Offset(params.Offset)
	if params.App != "" {
		builder.FilterByApp(string(params.App))
	}
	if params.Entity != "" {
		builder.FilterByEntity(params.Entity)
	}
	qp, err := builder.BuildProfile(RankProfileUnranked)
	if err != nil {
		return nil, err
	}

	payload := vespa.Payload{
		vespa.KeyYQL:            qp.YQL,
		vespa.KeyEmail:          params.Email,
		vespa.KeyRankingProfile: qp.Profile,
		vespa.KeyHits:           limit,
		vespa.KeyTimeout:        vespa.DefaultTimeout,
	}
	if params.Offset > 0 {
		payload[vespa.KeyOffset] = params.Offset
	}
	return s.dispatch(ctx, "getItems", []string{params.Schema}, payload)
}

// ThreadItemsParams parameterize threaded retrieval.
type ThreadItemsParams struct {
	Schema      string
	Email       string
	ThreadID    string
	Limit       int
	Asc         bool
	FilterQuery string
	ChannelID   string
}

// GetThreadItems retrieves the items of one thread. When a filter query
// is present for chat threads, a hybrid filter search scoped to the
// thread runs instead of the plain listing; its transport call completes
// before the response is assembled.
func (s *Service) GetThreadItems(ctx context.Context, params ThreadItemsParams) (*vespa.SearchResponse, error) {
	if params.ThreadID == "" {
		return nil, oops.Code(yql.CodeValidation).Errorf("thread id is required")
	}
	schema := params.Schema
	if schema == "" {
		schema = SchemaChatMessage
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.cfg.Page
	}

	thread := yql.Contains(FieldThreadID, params.ThreadID)

	if params.FilterQuery != "" && schema == SchemaChatMessage {
		parts := []yql.Condition{
			hybridCore(yql.WithEmailPermissions(), FieldTextEmbeddings, limit),
			thread,
		}
		if params.ChannelID != "" {
			parts = append(parts, yql.Contains(FieldChannelID, params.ChannelID))
		}
		qp, err := yql.NewBuilder().
			From(schema).
			Where(conjoin(parts...)).
			Limit(limit).
			BuildProfile(RankProfileNativeRank)
		if err != nil {
			return nil, err
		}
		payload := vespa.Payload{
			vespa.KeyYQL:            qp.YQL,
			vespa.KeyQuery:          params.FilterQuery,
			vespa.KeyEmail:          params.Email,
			vespa.KeyRankingProfile: qp.Profile,
			vespa.KeyHits:           limit,
			vespa.KeyTimeout:        vespa.DefaultTimeout,
			vespa.KeyInputEmbedding: vespa.EmbedQueryExpr,
			vespa.KeyInputAlpha:     DefaultAlpha,
		}
		return s.dispatch(ctx, "getThreadItems", []string{schema}, payload)
	}

	dir := yql.Desc
	if params.Asc {
		dir = yql.Asc
	}
	timeField := timeFieldForSchema(schema)
	qp, err := yql.NewBuilder().
		From(schema).
		Where(yql.AndScoped(itemsPolicy(schema), thread)).
		OrderBy(timeField, dir).
		Limit(limit).
		BuildProfile(RankProfileUnranked)
	if err != nil {
		return nil, err
	}
	payload := vespa.Payload{
		vespa.KeyYQL:            qp.YQL,
		vespa.KeyEmail:          params.Email,
		vespa.KeyRankingProfile: qp.Profile,
		vespa.KeyHits:           limit,
		vespa.KeyTimeout:        vespa.DefaultTimeout,
	}
	return s.dispatch(ctx, "getThreadItems", []string{schema}, payload)
}

// itemsPolicy picks the permission scope for filter-only retrieval:
// user entries may be owned rather than shared, everything else is
// permission-listed.
func itemsPolicy(schema string) yql.PermissionPolicy {
	if schema == SchemaUser || schema == SchemaChatUser {
		return yql.WithBothPermissions()
	}
	return yql.WithEmailPermissions()
}

// GetDocumentsByDocIds fetches documents by id across all sources,
// unranked.
func (s *Service) GetDocumentsByDocIds(ctx context.Context, email string, docIDs []string) (*vespa.SearchResponse, error) {
	ids := yql.Include(yql.FieldDocID, docIDs)
	if ids.IsEmpty() {
		return nil, oops.Code(yql.CodeValidation).Errorf("doc id list cannot be empty")
	}
	qp, err := yql.NewBuilder().
		Where(ids).
		Limit(len(docIDs)).
		BuildProfile(RankProfileUnranked)
	if err != nil {
		return nil, err
	}
	payload := vespa.Payload{
		vespa.KeyYQL:            qp.YQL,
		vespa.KeyEmail:          email,
		vespa.KeyRankingProfile: qp.Profile,
		vespa.KeyHits:           len(docIDs),
		vespa.KeyTimeout:        vespa.DefaultTimeout,
	}
	return s.dispatch(ctx, "getDocumentsByDocIds", []string{yql.AllSources}, payload)
}

// GetDocumentsByThreadId fetches every mail in a thread, oldest first.
func (s *Service) GetDocumentsByThreadId(ctx context.Context, email, threadID string) (*vespa.SearchResponse, error) {
	if threadID == "" {
		return nil, oops.Code(yql.CodeValidation).Errorf("thread id is required")
	}
	qp, err := yql.NewBuilder().
		From(SchemaMail).
		Where(yql.AndScoped(yql.WithEmailPermissions(), yql.Contains(FieldThreadID, threadID))).
		OrderBy(FieldTimestamp, yql.Asc).
		BuildProfile(RankProfileUnranked)
	if err != nil {
		return nil, err
	}
	payload := vespa.Payload{
		vespa.KeyYQL:            qp.YQL,
		vespa.KeyEmail:          email,
		vespa.KeyRankingProfile: qp.Profile,
		vespa.KeyTimeout:        vespa.DefaultTimeout,
	}
	return s.dispatch(ctx, "getDocumentsByThreadId", []string{SchemaMail}, payload)
}

// IfDocumentsExist reports which of the given ids exist in any schema.
// Absence is a negative result, never an error. Long id lists are split
// into bounded chunks.
func (s *Service) IfDocumentsExist(ctx context.Context, docIDs []string) (map[string]bool, error) {
	return s.existenceCheck(ctx, yql.AllSources, docIDs)
}

// IfMailDocsExist reports which of the given mail ids exist.
func (s *Service) IfMailDocsExist(ctx context.Context, docIDs []string) (map[string]bool, error) {
	return s.existenceCheck(ctx, SchemaMail, docIDs)
}

func (s *Service) existenceCheck(ctx context.Context, source string, docIDs []string) (map[string]bool, error) {
	found := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		found[id] = false
	}
	for start := 0; start < len(docIDs); start += existenceChunkSize {
		end := min(start+existenceChunkSize, len(docIDs))
		chunk := docIDs[start:end]

		ids := yql.Include(yql.FieldDocID, chunk)
		if ids.IsEmpty() {
			continue
		}
		qp, err := yql.NewBuilder().
			From(source).
			Where(ids).
			Limit(len(chunk)).
			BuildProfile(RankProfileUnranked)
		if err != nil {
			return nil, err
		}
		payload := vespa.Payload{
			vespa.KeyYQL:            qp.YQL,
			vespa.KeyRankingProfile: qp.Profile,
			vespa.KeyHits:           len(chunk),
			vespa.KeyTimeout:        vespa.DefaultTimeout,
		}
		resp, err := s.dispatch(ctx, "ifDocumentsExist", []string{source}, payload)
		if err != nil {
			return nil, err
		}
		for _, hit := range resp.Root.Children {
			if id := hit.FieldString(yql.FieldDocID); id != "" {
				found[id] = true
			}
		}
	}
	return found, nil
}
