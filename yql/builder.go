// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package yql

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// AllSources selects every schema in the cluster.
const AllSources = "*"

// Direction orders query results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// QueryProfile pairs a rendered query with the ranking profile to run it
// under.
type QueryProfile struct {
	Profile string
	YQL     string
}

// Builder assembles a full YQL select statement: source list, where root,
// ordering, pagination and an optional grouping tail. Builders are
// single-use: mutate through the fluent methods, then call Build once.
type Builder struct {
	sources    []string
	root       Condition
	orderField string
	orderDir   Direction
	limit      *int
	offset     *int
	groupBy    string
	err        error
}

// NewBuilder returns a builder selecting all sources with no predicate.
func NewBuilder() *Builder {
	return &Builder{sources: []string{AllSources}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// From sets the source list. Passing AllSources (or nothing) selects all.
func (b *Builder) From(sources ...string) *Builder {
	if len(sources) == 0 {
		return b.fail(oops.Code(CodeValidation).Errorf("source list cannot be empty"))
	}
	b.sources = sources
	return b
}

// Where replaces the root predicate.
func (b *Builder) Where(c Condition) *Builder {
	b.root = c
	return b
}

// WhereOr sets the root to a disjunction of the given conditions,
// dropping children that render to nothing.
func (b *Builder) WhereOr(conds ...Condition) *Builder {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c == nil || IsEmpty(c) {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return b
	}
	b.root = Or(kept...)
	return b
}

// conjoin ANDs a condition onto the current root.
func (b *Builder) conjoin(c Condition) *Builder {
	if c == nil || IsEmpty(c) {
		return b
	}
	if b.root == nil {
		b.root = c
		return b
	}
	b.root = And(b.root, c)
	return b
}

// FilterByApp conjoins an app filter; several apps become a disjunction.
func (b *Builder) FilterByApp(apps ...string) *Builder {
	return b.filterContains(FieldApp, apps)
}

// FilterByEntity conjoins an entity filter; several entities become a
// disjunction.
func (b *Builder) FilterByEntity(entities ...string) *Builder {
	return b.filterContains(FieldEntity, entities)
}

func (b *Builder) filterContains(field string, values []string) *Builder {
	switch len(values) {
	case 0:
		return b
	case 1:
		return b.conjoin(Contains(field, values[0]))
	default:
		return b.conjoin(Include(field, values))
	}
}

// ExcludeDocIDs conjoins a docId exclusion; an empty exclusion is a no-op.
func (b *Builder) ExcludeDocIDs(ids []string) *Builder {
	excl := ExcludeDocIDs(ids)
	if excl.IsEmpty() {
		return b
	}
	return b.conjoin(excl)
}

// OrderBy sets the ordering. The field name is validated.
func (b *Builder) OrderBy(field string, dir Direction) *Builder {
	if err := ValidateFieldName(field); err != nil {
		return b.fail(err)
	}
	b.orderField = field
	b.orderDir = dir
	return b
}

// Limit sets the hit limit; zero is preserved and means "aggregates only".
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		return b.fail(oops.Code(CodeValidation).With("limit", n).Errorf("limit cannot be negative"))
	}
	b.limit = &n
	return b
}

// Offset sets the pagination offset.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		return b.fail(oops.Code(CodeValidation).With("offset", n).Errorf("offset cannot be negative"))
	}
	b.offset = &n
	return b
}

// GroupBy attaches an uninterpreted grouping tail, rendered after a pipe.
func (b *Builder) GroupBy(expr string) *Builder {
	b.groupBy = expr
	return b
}

// Build renders the query. Clauses with no value are omitted; a query with
// no predicate elides the where keyword entirely.
func (b *Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	var sb strings.Builder
	sb.WriteString("select * from sources ")
	sb.WriteString(strings.Join(b.sources, ", "))
	if b.root != nil {
		frag, err := b.root.Render()
		if err != nil {
			return "", err
		}
		if frag != "" {
			sb.WriteString(" where ")
			sb.WriteString(frag)
		}
	}
	if b.orderField != "" {
		sb.WriteString(" order by ")
		sb.WriteString(b.orderField)
		if b.orderDir != "" {
			sb.WriteString(" ")
			sb.WriteString(string(b.orderDir))
		}
	}
	if b.limit != nil {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.Itoa(*b.limit))
	}
	if b.offset != nil {
		sb.WriteString(" offset ")
		sb.WriteString(strconv.Itoa(*b.offset))
	}
	if b.groupBy != "" {
		sb.WriteString(" | ")
		sb.WriteString(b.groupBy)
	}
	return sb.String(), nil
}

// BuildProfile renders the query and pairs it with a ranking profile.
func (b *Builder) BuildProfile(profile string) (QueryProfile, error) {
	yql, err := b.Build()
	if err != nil {
		return QueryProfile{}, err
	}
	return QueryProfile{Profile: profile, YQL: yql}, nil
}
