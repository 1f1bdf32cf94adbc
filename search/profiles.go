// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"github.com/xynehq/vespa-go/yql"
)

// TimeRange bounds a search to a time window. Either bound may be nil.
type TimeRange struct {
	From *int64
	To   *int64
}

// IsZero reports whether no bound is set.
func (tr *TimeRange) IsZero() bool {
	return tr == nil || (tr.From == nil && tr.To == nil)
}

// recognized time fields unioned by the default condition, in render order.
var defaultTimeFields = []string{
	FieldUpdatedAt,
	FieldCreationTime,
	FieldStartTime,
	FieldTimestamp,
}

// hybridCore is the lexical+vector disjunction at the heart of every
// profile, scoped by the group's permission policy.
func hybridCore(policy yql.PermissionPolicy, vectorField string, hits int) yql.Condition {
	return yql.OrScoped(policy,
		yql.UserInput(QueryRef, hits),
		yql.NearestNeighbor(vectorField, EmbeddingRef, hits),
	)
}

// timeFilter builds a single-field range, or nil when the range is empty.
func timeFilter(field string, tr *TimeRange) yql.Condition {
	if tr.IsZero() {
		return nil
	}
	return yql.TimestampRange(field, field, tr.From, tr.To)
}

// conjoin ANDs together the non-nil, non-empty conditions. A single
// survivor is returned unwrapped.
func conjoin(conds ...yql.Condition) yql.Condition {
	kept := make([]yql.Condition, 0, len(conds))
	for _, c := range conds {
		if c == nil || yql.IsEmpty(c) {
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return yql.And(kept...)
	}
}

// DefaultCondition is the hybrid recipe for corpora without an
// app-specific override: permission-scoped lexical+vector search,
// optionally narrowed by a time window unioned across every recognized
// time field.
func DefaultCondition(hits int, tr *TimeRange) yql.Condition {
	core := hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits)
	if tr.IsZero() {
		return core
	}
	ranges := make([]yql.Condition, len(defaultTimeFields))
	for i, field := range defaultTimeFields {
		ranges[i] = yql.TimestampRange(field, field, tr.From, tr.To)
	}
	return yql.And(core, yql.Or(ranges...))
}

// WorkspaceCondition covers contacts/users. Two parallel sub-queries are
// unioned: a permission-scoped branch for directory entries shared with
// the principal, and an owner-scoped branch for the principal's own
// entries, the latter carrying any explicit app/entity filters.
func WorkspaceCondition(hits int, tr *TimeRange, apps []string, entities []string) yql.Condition {
	noExplicit := len(apps) == 0 && len(entities) == 0

	permParts := []yql.Condition{
		hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits),
		timeFilter(FieldCreationTime, tr),
	}
	if noExplicit {
		permParts = append(permParts, yql.Contains(yql.FieldApp, string(AppGoogleWorkspace)))
	}

	ownerParts := []yql.Condition{
		hybridCore(yql.WithOwnerPermissions(), FieldChunkEmbeddings, hits),
		timeFilter(FieldCreationTime, tr),
	}
	if len(apps) > 0 {
		ownerParts = append(ownerParts, yql.Include(yql.FieldApp, apps))
	}
	if len(entities) > 0 {
		ownerParts = append(ownerParts, yql.Include(yql.FieldEntity, entities))
	}

	return yql.Or(conjoin(permParts...), conjoin(ownerParts...))
}

// GmailCondition narrows mail: hybrid core, time filter on the message
// timestamp, optional label exclusion and optional intent filter.
func GmailCondition(hits int, tr *TimeRange, excludedLabels []string, intent *Intent) yql.Condition {
	parts := []yql.Condition{
		hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits),
		timeFilter(FieldTimestamp, tr),
	}
	labels := yql.Include(FieldLabels, excludedLabels)
	if !labels.IsEmpty() {
		parts = append(parts, yql.Not(labels))
	}
	if c := intent.Condition(); c != nil {
		parts = append(parts, c)
	}
	return conjoin(parts...)
}

// DriveCondition narrows files: hybrid core, time filter on updatedAt,
// and an optional docId inclusion for drive-scoped searches. The
// inclusion carries no permission clause of its own; scoping already
// happened when the caller resolved the ids.
func DriveCondition(hits int, tr *TimeRange, docIDs []string) yql.Condition {
	parts := []yql.Condition{
		hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits),
		timeFilter(FieldUpdatedAt, tr),
	}
	ids := yql.Include(yql.FieldDocID, docIDs)
	if !ids.IsEmpty() {
		parts = append(parts, yql.OrScoped(yql.BypassPermissions(), ids))
	}
	return conjoin(parts...)
}

// CalendarCondition narrows events: hybrid core and a time filter on the
// event start.
func CalendarCondition(hits int, tr *TimeRange) yql.Condition {
	return conjoin(
		hybridCore(yql.WithEmailPermissions(), FieldChunkEmbeddings, hits),
		timeFilter(FieldStartTime, tr),
	)
}

// SlackCondition narrows chat messages: same shape as Drive but over the
// text embedding field, with an optional channel inclusion.
func SlackCondition(hits int, tr *TimeRange, channelIDs []string) yql.Condition {
	parts := []yql.Condition{
		hybridCore(yql.WithEmailPermissions(), FieldTextEmbeddings, hits),
		timeFilter(FieldUpdatedAt, tr),
	}
	channels := yql.Include(FieldChannelID, channelIDs)
	if !channels.IsEmpty() {
		parts = append(parts, channels)
	}
	return conjoin(parts...)
}

// DataSourceCondition searches uploads in the caller's selected data
// sources. Access control is enforced by the id selection, so the whole
// group bypasses the permission protocol.
func DataSourceCondition(hits int, dataSourceIDs []string) yql.Condition {
	return yql.AndScoped(yql.BypassPermissions(),
		hybridCore(yql.BypassPermissions(), FieldChunkEmbeddings, hits),
		yql.Include(FieldDataSourceID, dataSourceIDs),
	)
}

// KnowledgeBaseCondition searches knowledge-base items selected by
// collection, folder or file ids. Any combination of the three id kinds
// may be present; their inclusions are unioned. Permission checks are
// bypassed for the same reason as data sources.
func KnowledgeBaseCondition(hits int, collectionIDs, folderIDs, fileIDs []string) yql.Condition {
	var selectors []yql.Condition
	for _, sel := range []yql.Inclusion{
		yql.Include(FieldCollectionID, collectionIDs),
		yql.Include(FieldFolderID, folderIDs),
		yql.Include(yql.FieldDocID, fileIDs),
	} {
		if !sel.IsEmpty() {
			selectors = append(selectors, sel)
		}
	}

	core := hybridCore(yql.BypassPermissions(), FieldChunkEmbeddings, hits)
	if len(selectors) == 0 {
		return yql.AndScoped(yql.BypassPermissions(), core)
	}
	var selector yql.Condition
	if len(selectors) == 1 {
		selector = selectors[0]
	} else {
		selector = yql.OrScoped(yql.BypassPermissions(), selectors...)
	}
	return yql.AndScoped(yql.BypassPermissions(), core, selector)
}

// conditionForSchema picks the profile builder matching a schema's app.
func conditionForSchema(schema string, hits int, tr *TimeRange, opts *Options) yql.Condition {
	switch AppForSchema(schema) {
	case AppGoogleWorkspace:
		return WorkspaceCondition(hits, tr, nil, nil)
	case AppGmail:
		return GmailCondition(hits, tr, opts.NotInMailLabels, opts.Intent)
	case AppGoogleDrive:
		return DriveCondition(hits, tr, nil)
	case AppGoogleCalendar:
		return CalendarCondition(hits, tr)
	case AppSlack:
		return SlackCondition(hits, tr, nil)
	default:
		return DefaultCondition(hits, tr)
	}
}
