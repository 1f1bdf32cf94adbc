// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

// Package search composes per-application hybrid search queries and
// dispatches them to the Vespa transport.
package search

// App identifies a connected application whose documents live in one or
// more Vespa schemas.
type App string

const (
	AppGoogleWorkspace App = "google-workspace"
	AppGoogleDrive     App = "google-drive"
	AppGmail           App = "gmail"
	AppGoogleCalendar  App = "google-calendar"
	AppSlack           App = "slack"
	AppDataSource      App = "data-source"
	AppKnowledgeBase   App = "knowledge-base"
)

// Schemas served by the cluster.
const (
	SchemaFile           = "file"
	SchemaUser           = "user"
	SchemaMail           = "mail"
	SchemaMailAttachment = "mail_attachment"
	SchemaEvent          = "event"
	SchemaChatMessage    = "chat_message"
	SchemaChatUser       = "chat_user"
	SchemaDataSourceFile = "datasource_file"
	SchemaKbItems        = "kb_items"
	SchemaUserQuery      = "user_query"
)

// Corpus-specific field names.
const (
	FieldUpdatedAt    = "updatedAt"
	FieldCreationTime = "creationTime"
	FieldStartTime    = "startTime"
	FieldTimestamp    = "timestamp"
	FieldCreatedAt    = "createdAt"

	FieldChunkEmbeddings = "chunk_embeddings"
	FieldTextEmbeddings  = "text_embeddings"

	FieldLabels       = "labels"
	FieldChannelID    = "channelId"
	FieldUserID       = "userId"
	FieldThreadID     = "threadId"
	FieldDataSourceID = "dataSourceId"
	FieldCollectionID = "clId"
	FieldFolderID     = "clFd"

	FieldTitleFuzzy   = "title_fuzzy"
	FieldNameFuzzy    = "name_fuzzy"
	FieldEmailFuzzy   = "email_fuzzy"
	FieldSubjectFuzzy = "subject_fuzzy"
	FieldQueryText    = "query_text"
	FieldEmail        = "email"
)

// Bound query parameters.
const (
	QueryRef     = "@query"
	EmbeddingRef = "e"
)

// Ranking profiles.
const (
	RankProfileNativeRank   = "nativeRank"
	RankProfileAutocomplete = "autocomplete"
	RankProfileUnranked     = "unranked"
	RankProfileInitial      = "initial"
)

// Tuning defaults.
const (
	DefaultTargetHits       = 10
	DefaultAlpha            = 0.5
	DefaultRecencyDecayRate = 0.02
)

// schemasByApp maps each app to the schemas that hold its documents.
var schemasByApp = map[App][]string{
	AppSlack:           {SchemaChatMessage, SchemaChatUser},
	AppGmail:           {SchemaMail, SchemaMailAttachment},
	AppGoogleDrive:     {SchemaFile},
	AppGoogleCalendar:  {SchemaEvent},
	AppGoogleWorkspace: {SchemaUser},
	AppDataSource:      {SchemaDataSourceFile},
	AppKnowledgeBase:   {SchemaKbItems},
}

// appBySchema is the inverse of schemasByApp.
var appBySchema = func() map[string]App {
	m := make(map[string]App)
	for app, schemas := range schemasByApp {
		for _, schema := range schemas {
			m[schema] = app
		}
	}
	return m
}()

// SchemasForApp returns the schemas holding the app's documents.
func SchemasForApp(app App) []string {
	schemas := schemasByApp[app]
	out := make([]string, len(schemas))
	copy(out, schemas)
	return out
}

// AppForSchema returns the app a schema belongs to, or "" for shared
// schemas like user_query.
func AppForSchema(schema string) App {
	return appBySchema[schema]
}

// DefaultSchemaSources lists every app-backed schema in canonical query
// order, for deployments that do not configure their own list.
func DefaultSchemaSources() []string {
	return []string{
		SchemaFile,
		SchemaUser,
		SchemaMail,
		SchemaMailAttachment,
		SchemaEvent,
		SchemaChatMessage,
		SchemaChatUser,
		SchemaDataSourceFile,
		SchemaKbItems,
	}
}

// SelectSources returns the configured schemas minus those belonging to
// excluded apps, preserving configuration order.
func SelectSources(configured []string, excluded []App) []string {
	dropped := make(map[string]bool)
	for _, app := range excluded {
		for _, schema := range schemasByApp[app] {
			dropped[schema] = true
		}
	}
	out := make([]string, 0, len(configured))
	for _, schema := range configured {
		if !dropped[schema] {
			out = append(out, schema)
		}
	}
	return out
}

// timeFieldForSchema returns the field queries order and filter on for a
// schema's notion of time.
func timeFieldForSchema(schema string) string {
	switch schema {
	case SchemaMail, SchemaMailAttachment:
		return FieldTimestamp
	case SchemaEvent:
		return FieldStartTime
	case SchemaUser, SchemaChatUser:
		return FieldCreationTime
	case SchemaUserQuery:
		return FieldCreatedAt
	default:
		return FieldUpdatedAt
	}
}
