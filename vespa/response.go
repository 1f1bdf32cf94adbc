// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

// SearchResponse is the decoded body of a query-API response.
type SearchResponse struct {
	Root   RootNode `json:"root"`
	Timing *Timing  `json:"timing,omitempty"`
	Trace  any      `json:"trace,omitempty"`
}

// Timing reports server-side query timing.
type Timing struct {
	QueryTime   float64 `json:"querytime"`
	SummaryTime float64 `json:"summaryfetchtime"`
	SearchTime  float64 `json:"searchtime"`
}

// RootNode is the root of the result tree.
type RootNode struct {
	ID        string       `json:"id"`
	Relevance float64      `json:"relevance"`
	Fields    RootFields   `json:"fields"`
	Coverage  *Coverage    `json:"coverage,omitempty"`
	Errors    []QueryError `json:"errors,omitempty"`
	Children  []Hit        `json:"children,omitempty"`
}

// RootFields carries aggregate result fields.
type RootFields struct {
	TotalCount int `json:"totalCount"`
}

// Coverage reports how much of the corpus the query touched.
type Coverage struct {
	Coverage    int   `json:"coverage"`
	Documents   int64 `json:"documents"`
	Full        bool  `json:"full"`
	Nodes       int   `json:"nodes"`
	Results     int   `json:"results"`
	ResultsFull int   `json:"resultsFull"`
}

// QueryError is a per-query error reported inside the result tree.
type QueryError struct {
	Code    int    `json:"code"`
	Summary string `json:"summary"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message,omitempty"`
}

// Hit is a single result child. Grouping results nest further children.
type Hit struct {
	ID        string         `json:"id"`
	Relevance float64        `json:"relevance"`
	Source    string         `json:"source,omitempty"`
	Label     string         `json:"label,omitempty"`
	Value     string         `json:"value,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Children  []Hit          `json:"children,omitempty"`
}

// FieldString returns a string field from the hit, or "" when absent or
// not a string.
func (h Hit) FieldString(name string) string {
	s, _ := h.Fields[name].(string)
	return s
}

// Document is a document-API response body.
type Document struct {
	PathID string         `json:"pathId"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}
