// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/xynehq/vespa-go/vespa"
	"github.com/xynehq/vespa-go/yql"
)

// Transport is the backend collaborator. It accepts fully-prepared
// payloads and performs no query construction. *vespa.Client satisfies it.
type Transport interface {
	Search(ctx context.Context, payload vespa.Payload) (*vespa.SearchResponse, error)
	Insert(ctx context.Context, schema, docID string, fields map[string]any) error
	GetDocument(ctx context.Context, schema, docID string) (*vespa.Document, error)
	GetDocumentOrNil(ctx context.Context, schema, docID string) (*vespa.Document, error)
	UpdateDocument(ctx context.Context, schema, docID string, fields map[string]any) error
	DeleteDocument(ctx context.Context, schema, docID string) error
}

// Service is the dispatch API: it selects and parameterizes profile
// builders, renders queries and invokes the transport. It is stateless
// and safe for concurrent use.
type Service struct {
	transport Transport
	cfg       vespa.Config
	logger    *slog.Logger
	history   *HistoryRecorder
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithHistory enables query-history recording.
func WithHistory(h *HistoryRecorder) ServiceOption {
	return func(s *Service) { s.history = h }
}

// NewService creates a Service over the given transport.
func NewService(transport Transport, cfg vespa.Config, opts ...ServiceOption) *Service {
	s := &Service{
		transport: transport,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options parameterize the general search operations.
type Options struct {
	// Limit caps returned hits; zero falls back to the configured page.
	Limit int
	// Offset paginates results.
	Offset int
	// Alpha weighs vector against lexical scoring; zero means the default.
	Alpha float64
	// RecencyDecayRate overrides the recency decay; nil means the default.
	RecencyDecayRate *float64
	// RankProfile overrides the default ranking profile.
	RankProfile string
	// TimeRange narrows results to a window.
	TimeRange *TimeRange
	// ExcludedIDs removes specific documents from the result.
	ExcludedIDs []string
	// ExcludedApps removes whole corpora, derived from connectivity.
	ExcludedApps []App
	// NotInMailLabels drops mail carrying any of these labels.
	NotInMailLabels []string
	// Intent optionally narrows mail by participants/subject.
	Intent *Intent
}

func (o *Options) limitOr(fallback int) int {
	if o.Limit > 0 {
		return o.Limit
	}
	return fallback
}

func (o *Options) alpha() float64 {
	if o.Alpha > 0 {
		return o.Alpha
	}
	return DefaultAlpha
}

func (o *Options) recencyDecay() float64 {
	if o.RecencyDecayRate != nil {
		return *o.RecencyDecayRate
	}
	return DefaultRecencyDecayRate
}

// basePayload builds the transport payload shared by every search
// operation.
func (s *Service) basePayload(qp yql.QueryProfile, query, email string, hits, offset int, opts *Options) vespa.Payload {
	p := vespa.Payload{
		vespa.KeyYQL:                 qp.YQL,
		vespa.KeyQuery:               query,
		vespa.KeyEmail:               email,
		vespa.KeyRankingProfile:      qp.Profile,
		vespa.KeyHits:                hits,
		vespa.KeyTimeout:             vespa.DefaultTimeout,
		vespa.KeyInputEmbedding:      vespa.EmbedQueryExpr,
		vespa.KeyInputAlpha:          opts.alpha(),
		vespa.KeyInputRecencyDecay:   opts.recencyDecay(),
		vespa.KeyInputIsIntentSearch: boolParam(opts.Intent.IsActionable()),
	}
	if offset > 0 {
		p[vespa.KeyOffset] = offset
	}
	return p
}

// boolParam renders a boolean as the 0.0/1.0 rank input Vespa expects.
func boolParam(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// searchRoot builds the disjunction of per-app conditions for the given
// sources. Schemas sharing an app contribute one condition.
func searchRoot(sources []string, hits int, opts *Options) yql.Condition {
	seen := make(map[App]bool)
	var conds []yql.Condition
	for _, schema := range sources {
		app := AppForSchema(schema)
		if seen[app] {
			continue
		}
		seen[app] = true
		conds = append(conds, conditionForSchema(schema, hits, opts.TimeRange, opts))
	}
	if len(conds) == 0 {
		return nil
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return yql.Or(conds...)
}

// Search runs a hybrid search across every available corpus, or a single
// app/entity slice of it.
func (s *Service) Search(ctx context.Context, query, email string, app App, entity string, opts Options) (*vespa.SearchResponse, error) {
	hits := opts.limitOr(s.cfg.Page)

	sources := SelectSources(s.cfg.SchemaSources, opts.ExcludedApps)
	if app != "" {
		sources = SelectSources(SchemasForApp(app), opts.ExcludedApps)
	}
	if len(sources) == 0 {
		return nil, oops.Code(yql.CodeValidation).
			With("app", string(app)).
			Errorf("no sources left to search")
	}

	builder := yql.NewBuilder().
		From(sources...).
		Where(searchRoot(sources, hits, &opts)).
		ExcludeDocIDs(opts.ExcludedIDs).
		Limit(hits).
		Offset(opts.Offset)
	if entity != "" {
		builder.FilterByEntity(entity)
	}

	profile := opts.RankProfile
	if profile == "" {
		profile = RankProfileNativeRank
	}
	qp, err := builder.BuildProfile(profile)
	if err != nil {
		return nil, err
	}

	s.recordHistory(ctx, email, query)
	return s.dispatch(ctx, "search", sources, s.basePayload(qp, query, email, hits, opts.Offset, &opts))
}

// GroupSearch aggregates match counts by (app, entity) instead of
// returning hits.
func (s *Service) GroupSearch(ctx context.Context, query, email string, opts Options) (*vespa.SearchResponse, error) {
	sources := SelectSources(s.cfg.SchemaSources, opts.ExcludedApps)
	if len(sources) == 0 {
		return nil, oops.Code(yql.CodeValidation).Errorf("no sources left to search")
	}
	hits := opts.limitOr(s.cfg.Page)

	qp, err := yql.NewBuilder().
		From(sources...).
		Where(searchRoot(sources, hits, &opts)).
		ExcludeDocIDs(opts.ExcludedIDs).
		Limit(0).
		GroupBy("all(group(app) each(group(entity) each(output(count()))))").
		BuildProfile(RankProfileNativeRank)
	if err != nil {
		return nil, err
	}

	return s.dispatch(ctx, "groupSearch", sources, s.basePayload(qp, query, email, 0, 0, &opts))
}

// Autocomplete suggests completions from titles, people, mail subjects
// and the principal's own query history. Results are de-duplicated by
// email so a person appears once no matter how many corpora carry them.
func (s *Service) Autocomplete(ctx context.Context, query, email string, limit int) ([]vespa.Hit, error) {
	if limit <= 0 {
		limit = s.cfg.Page
	}

	fuzzy := func(field string) yql.Condition {
		return yql.FuzzyContains(field, QueryRef, 2, true)
	}
	root := yql.Or(
		yql.AndScoped(yql.WithEmailPermissions(), fuzzy(FieldTitleFuzzy)),
		yql.And(
			yql.Or(fuzzy(FieldNameFuzzy), fuzzy(FieldEmailFuzzy)),
			yql.Or(
				yql.ContainsRef(yql.FieldOwner, yql.PrincipalRef),
				yql.Contains(yql.FieldApp, string(AppGoogleWorkspace)),
			),
		),
		yql.AndScoped(yql.WithEmailPermissions(), fuzzy(FieldSubjectFuzzy)),
		yql.AndScoped(yql.WithOwnerPermissions(), fuzzy(FieldQueryText)),
	)

	qp, err := yql.NewBuilder().
		From(SchemaFile, SchemaUser, SchemaMail, SchemaUserQuery).
		Where(root).
		Limit(limit).
		BuildProfile(RankProfileAutocomplete)
	if err != nil {
		return nil, err
	}

	payload := vespa.Payload{
		vespa.KeyYQL:                 qp.YQL,
		vespa.KeyQuery:               query,
		vespa.KeyEmail:               email,
		vespa.KeyRankingProfile:      qp.Profile,
		vespa.KeyPresentationSummary: "autocomplete",
		vespa.KeyHits:                limit,
		vespa.KeyTimeout:             vespa.DefaultTimeout,
	}
	resp, err := s.dispatch(ctx, "autocomplete", []string{SchemaFile, SchemaUser, SchemaMail, SchemaUserQuery}, payload)
	if err != nil {
		return nil, err
	}
	return dedupeByEmail(resp.Root.Children), nil
}

// dedupeByEmail keeps the first hit per email; hits with no email field
// all survive.
func dedupeByEmail(hits []vespa.Hit) []vespa.Hit {
	seen := make(map[string]bool)
	out := make([]vespa.Hit, 0, len(hits))
	for _, h := range hits {
		mail := h.FieldString(FieldEmail)
		if mail != "" {
			if seen[mail] {
				continue
			}
			seen[mail] = true
		}
		out = append(out, h)
	}
	return out
}

// SearchInFiles runs the hybrid search constrained to an explicit
// document set, unioning the per-corpus field strategies: chunk
// embeddings for files and mail, text embeddings for chat, and plain
// lexical matching for contacts.
func (s *Service) SearchInFiles(ctx context.Context, query, email string, fileIDs []string, opts Options) (*vespa.SearchResponse, error) {
	ids := yql.Include(yql.FieldDocID, fileIDs)
	if ids.IsEmpty() {
		return nil, oops.Code(yql.CodeValidation).Errorf("file id list cannot be empty")
	}
	hits := opts.limitOr(s.cfg.Page)

	root := yql.Or(
		yql.And(hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits), ids),
		yql.And(hybridCore(yql.WithEmailPermissions(), FieldTextEmbeddings, hits), ids),
		yql.And(
			yql.OrScoped(yql.WithBothPermissions(), yql.UserInput(QueryRef, hits)),
			ids,
		),
	)

	sources := SelectSources(s.cfg.SchemaSources, opts.ExcludedApps)
	if len(sources) == 0 {
		sources = []string{yql.AllSources}
	}
	qp, err := yql.NewBuilder().
		From(sources...).
		Where(root).
		ExcludeDocIDs(opts.ExcludedIDs).
		Limit(hits).
		Offset(opts.Offset).
		BuildProfile(RankProfileNativeRank)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, "searchInFiles", sources, s.basePayload(qp, query, email, hits, opts.Offset, &opts))
}

// SlackOptions parameterize channel/thread/user scoped Slack search.
type SlackOptions struct {
	Options
	ChannelIDs []string
	ThreadID   string
	UserID     string
}

// SearchSlack searches chat messages scoped to channels, a thread or a
// user.
func (s *Service) SearchSlack(ctx context.Context, query, email string, opts SlackOptions) (*vespa.SearchResponse, error) {
	hits := opts.limitOr(s.cfg.Page)

	parts := []yql.Condition{SlackCondition(hits, opts.TimeRange, opts.ChannelIDs)}
	if opts.ThreadID != "" {
		parts = append(parts, yql.Contains(FieldThreadID, opts.ThreadID))
	}
	if opts.UserID != "" {
		parts = append(parts, yql.Contains(FieldUserID, opts.UserID))
	}

	qp, err := yql.NewBuilder().
		From(SchemaChatMessage).
		Where(conjoin(parts...)).
		ExcludeDocIDs(opts.ExcludedIDs).
		Limit(hits).
		Offset(opts.Offset).
		BuildProfile(RankProfileNativeRank)
	if err != nil {
		return nil, err
	}

	payload := s.basePayload(qp, query, email, hits, opts.Offset, &opts.Options)
	if len(opts.ChannelIDs) == 1 {
		payload[vespa.KeyChannelID] = opts.ChannelIDs[0]
	}
	if opts.UserID != "" {
		payload[vespa.KeyUserID] = opts.UserID
	}
	return s.dispatch(ctx, "searchSlack", []string{SchemaChatMessage}, payload)
}

// AgentOptions parameterize allow-list driven multi-corpus search.
type AgentOptions struct {
	Options
	DataSourceIDs     []string
	DriveIDs          []string
	SlackChannelIDs   []string
	CollectionIDs     []string
	CollectionFolders []string
	CollectionFileIDs []string
}

// SearchAgent searches only the corpora in the allow-list, combining
// drive doc-ids, slack channels, data-source and knowledge-base
// selections, and an optional intent.
func (s *Service) SearchAgent(ctx context.Context, query, email string, app App, entity string, allowedApps []App, opts AgentOptions) (*vespa.SearchResponse, error) {
	if len(allowedApps) == 0 {
		return nil, oops.Code(yql.CodeValidation).Errorf("agent search requires at least one allowed app")
	}
	hits := opts.limitOr(s.cfg.Page)

	var sources []string
	var conds []yql.Condition
	for _, allowed := range allowedApps {
		schemas := SchemasForApp(allowed)
		if len(schemas) == 0 {
			return nil, oops.Code(yql.CodeValidation).
				With("app", string(allowed)).
				Errorf("unknown app in allow-list")
		}
		sources = append(sources, schemas...)
		switch allowed {
		case AppGoogleDrive:
			conds = append(conds, DriveCondition(hits, opts.TimeRange, opts.DriveIDs))
		case AppGmail:
			conds = append(conds, GmailCondition(hits, opts.TimeRange, opts.NotInMailLabels, opts.Intent))
		case AppGoogleCalendar:
			conds = append(conds, CalendarCondition(hits, opts.TimeRange))
		case AppGoogleWorkspace:
			conds = append(conds, WorkspaceCondition(hits, opts.TimeRange, nil, nil))
		case AppSlack:
			conds = append(conds, SlackCondition(hits, opts.TimeRange, opts.SlackChannelIDs))
		case AppDataSource:
			conds = append(conds, DataSourceCondition(hits, opts.DataSourceIDs))
		case AppKnowledgeBase:
			conds = append(conds, KnowledgeBaseCondition(hits, opts.CollectionIDs, opts.CollectionFolders, opts.CollectionFileIDs))
		default:
			conds = append(conds, DefaultCondition(hits, opts.TimeRange))
		}
	}

	builder := yql.NewBuilder().
		From(sources...).
		WhereOr(conds...).
		ExcludeDocIDs(opts.ExcludedIDs).
		Limit(hits).
		Offset(opts.Offset)
	if app != "" {
		builder.FilterByApp(string(app))
	}
	if entity != "" {
		builder.FilterByEntity(entity)
	}

	profile := opts.RankProfile
	if profile == "" {
		profile = RankProfileNativeRank
	}
	qp, err := builder.BuildProfile(profile)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, "searchAgent", sources, s.basePayload(qp, query, email, hits, opts.Offset, &opts.Options))
}

// RAGParams parameterize retrieval for answer generation over
// knowledge-base items.
type RAGParams struct {
	Query        string
	DocIDs       []string
	ParentDocIDs []string
	Limit        int
	Offset       int
	Alpha        float64
	RankProfile  string
}

// SearchCollectionRAG retrieves knowledge-base chunks for a RAG pipeline.
func (s *Service) SearchCollectionRAG(ctx context.Context, params RAGParams) (*vespa.SearchResponse, error) {
	if params.Query == "" {
		return nil, oops.Code(yql.CodeValidation).Errorf("rag query cannot be empty")
	}
	hits := params.Limit
	if hits <= 0 {
		hits = s.cfg.Page
	}

	root := KnowledgeBaseCondition(hits, nil, params.ParentDocIDs, params.DocIDs)
	qp, err := yql.NewBuilder().
		From(SchemaKbItems).
		Where(root).
		Limit(hits).
		Offset(params.Offset).
		BuildProfile(ragProfile(params.RankProfile))
	if err != nil {
		return nil, err
	}

	alpha := params.Alpha
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	payload := vespa.Payload{
		vespa.KeyYQL:            qp.YQL,
		vespa.KeyQuery:          params.Query,
		vespa.KeyRankingProfile: qp.Profile,
		vespa.KeyHits:           hits,
		vespa.KeyTimeout:        vespa.DefaultTimeout,
		vespa.KeyInputEmbedding: vespa.EmbedQueryExpr,
		vespa.KeyInputAlpha:     alpha,
	}
	if params.Offset > 0 {
		payload[vespa.KeyOffset] = params.Offset
	}
	return s.dispatch(ctx, "searchCollectionRAG", []string{SchemaKbItems}, payload)
}

func ragProfile(override string) string {
	if override != "" {
		return override
	}
	return RankProfileInitial
}

// recordHistory best-effort records a user query; failures are logged,
// never surfaced.
func (s *Service) recordHistory(ctx context.Context, email, query string) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, email, query); err != nil {
		s.logger.Warn("query history update failed", "error", err)
	}
}

// dispatch invokes the transport and wraps failures with the involved
// sources.
func (s *Service) dispatch(ctx context.Context, op string, sources []string, payload vespa.Payload) (*vespa.SearchResponse, error) {
	requestID := ulid.Make().String()
	s.logger.Debug("dispatching query",
		"operation", op,
		"requestId", requestID,
		"sources", sources,
	)
	resp, err := s.transport.Search(ctx, payload)
	if err != nil {
		return nil, oops.Code(vespa.CodeSearchFailed).
			With("operation", op).
			With("requestId", requestID).
			With("sources", sources).
			Wrap(err)
	}
	return resp, nil
}
