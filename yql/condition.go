// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

// Package yql builds Vespa YQL queries from composable condition trees.
//
// A Condition is an immutable node that renders to a YQL fragment. Leaf
// constructors validate their inputs eagerly and stash any validation
// error inside the node; Render surfaces the first error found in the
// tree. Combinators (And, Or, Not, Paren) are total over Conditions and
// always return a new node without touching their inputs.
package yql

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// CodeValidation is the oops error code for rejected query inputs.
const CodeValidation = "VALIDATION_FAILED"

// Condition is a renderable YQL boolean expression.
type Condition interface {
	// Render returns the YQL fragment for this node. Rendering is a pure
	// function of the node's fields.
	Render() (string, error)
}

// Operator is a YQL comparison operator.
type Operator string

// Comparison operators accepted by Cmp.
const (
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
	OpEq       Operator = "="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
)

// comparison is a single field/operator/value test.
type comparison struct {
	field string
	op    Operator
	value any
	err   error
}

// Cmp builds a field comparison. The field name is validated immediately.
func Cmp(field string, op Operator, value any) Condition {
	return comparison{field: field, op: op, value: value, err: ValidateFieldName(field)}
}

// Contains builds `field contains 'value'`.
func Contains(field, value string) Condition {
	return Cmp(field, OpContains, value)
}

// containsRef tests a field against a bound parameter, which must render
// bare rather than quoted.
type containsRef struct {
	field string
	ref   string
	err   error
}

// ContainsRef builds `field contains @ref` without quoting the reference.
func ContainsRef(field, ref string) Condition {
	return containsRef{field: field, ref: ref, err: ValidateFieldName(field)}
}

func (c containsRef) Render() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.field + " contains " + c.ref, nil
}

// Matches builds `field matches 'pattern'`.
func Matches(field, pattern string) Condition {
	return Cmp(field, OpMatches, pattern)
}

// Eq builds `field = value`.
func Eq(field string, value any) Condition { return Cmp(field, OpEq, value) }

// Gte builds `field >= value`.
func Gte(field string, value any) Condition { return Cmp(field, OpGte, value) }

// Lte builds `field <= value`.
func Lte(field string, value any) Condition { return Cmp(field, OpLte, value) }

func (c comparison) Render() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return fmt.Sprintf("%s %s %s", c.field, c.op, Literal(c.value)), nil
}

// fuzzy is a fuzzy-contains match against a bound query parameter.
type fuzzy struct {
	field           string
	queryRef        string
	maxEditDistance int
	prefix          bool
	err             error
}

// FuzzyContains builds `field contains ({maxEditDistance: n, prefix: b} fuzzy(ref))`.
func FuzzyContains(field, queryRef string, maxEditDistance int, prefix bool) Condition {
	return fuzzy{
		field:           field,
		queryRef:        queryRef,
		maxEditDistance: maxEditDistance,
		prefix:          prefix,
		err:             ValidateFieldName(field),
	}
}

func (f fuzzy) Render() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s contains ({maxEditDistance: %d, prefix: %t} fuzzy(%s))",
		f.field, f.maxEditDistance, f.prefix, f.queryRef), nil
}

// userInput is the lexical half of a hybrid search.
type userInput struct {
	queryRef   string
	targetHits int
}

// UserInput builds `({targetHits: n} userInput(ref))`.
func UserInput(queryRef string, targetHits int) Condition {
	return userInput{queryRef: queryRef, targetHits: targetHits}
}

func (u userInput) Render() (string, error) {
	return fmt.Sprintf("({targetHits: %d} userInput(%s))", u.targetHits, u.queryRef), nil
}

// nearestNeighbor is the vector half of a hybrid search. Argument order is
// canonical: the embedding field first, then the bound query tensor.
type nearestNeighbor struct {
	field      string
	queryRef   string
	targetHits int
	err        error
}

// NearestNeighbor builds `({targetHits: n} nearestNeighbor(field, ref))`.
func NearestNeighbor(field, queryRef string, targetHits int) Condition {
	return nearestNeighbor{
		field:      field,
		queryRef:   queryRef,
		targetHits: targetHits,
		err:        ValidateFieldName(field),
	}
}

func (n nearestNeighbor) Render() (string, error) {
	if n.err != nil {
		return "", n.err
	}
	return fmt.Sprintf("({targetHits: %d} nearestNeighbor(%s, %s))",
		n.targetHits, n.field, n.queryRef), nil
}

// negation renders `!(child)`.
type negation struct {
	child Condition
}

// Not negates a condition.
func Not(c Condition) Condition { return negation{child: c} }

func (n negation) Render() (string, error) {
	inner, err := n.child.Render()
	if err != nil {
		return "", err
	}
	if inner == "" {
		return "", nil
	}
	return "!(" + inner + ")", nil
}

// paren renders `(child)`.
type paren struct {
	child Condition
}

// Paren wraps a condition in parentheses.
func Paren(c Condition) Condition { return paren{child: c} }

func (p paren) Render() (string, error) {
	inner, err := p.child.Render()
	if err != nil {
		return "", err
	}
	if inner == "" {
		return "", nil
	}
	return "(" + inner + ")", nil
}

// timestampRange bounds one or both of a pair of time fields.
type timestampRange struct {
	fromField string
	toField   string
	from      *int64
	to        *int64
	err       error
}

// TimestampRange builds `fromField >= from and toField <= to`, omitting
// absent bounds. Constructing a range with neither bound is an error.
func TimestampRange(fromField, toField string, from, to *int64) Condition {
	tr := timestampRange{fromField: fromField, toField: toField, from: from, to: to}
	if err := ValidateFieldName(fromField); err != nil {
		tr.err = err
	} else if err := ValidateFieldName(toField); err != nil {
		tr.err = err
	} else if from == nil && to == nil {
		tr.err = oops.Code(CodeValidation).
			With("fromField", fromField).
			With("toField", toField).
			Errorf("timestamp range requires at least one bound")
	}
	return tr
}

func (t timestampRange) Render() (string, error) {
	if t.err != nil {
		return "", t.err
	}
	var parts []string
	if t.from != nil {
		parts = append(parts, fmt.Sprintf("%s >= %d", t.fromField, *t.from))
	}
	if t.to != nil {
		parts = append(parts, fmt.Sprintf("%s <= %d", t.toField, *t.to))
	}
	return strings.Join(parts, " and "), nil
}

// Inclusion is a disjunction of `field contains` tests over a value list.
// Blank values are dropped at construction; an all-blank list renders to
// the empty string.
type Inclusion struct {
	field  string
	values []string
	err    error
}

// Include builds an Inclusion on the given field.
func Include(field string, values []string) Inclusion {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return Inclusion{field: field, values: kept, err: ValidateFieldName(field)}
}

// IsEmpty reports whether no values survived filtering.
func (i Inclusion) IsEmpty() bool { return len(i.values) == 0 }

// Render yields `field contains 'v'` for a single value and
// `(field contains 'v1' or field contains 'v2' ...)` for several.
func (i Inclusion) Render() (string, error) {
	if i.err != nil {
		return "", i.err
	}
	switch len(i.values) {
	case 0:
		return "", nil
	case 1:
		return fmt.Sprintf("%s contains %s", i.field, Literal(i.values[0])), nil
	default:
		parts := make([]string, len(i.values))
		for n, v := range i.values {
			parts[n] = fmt.Sprintf("%s contains %s", i.field, Literal(v))
		}
		return "(" + strings.Join(parts, " or ") + ")", nil
	}
}

// Exclusion negates a docId inclusion list.
type Exclusion struct {
	inner Inclusion
}

// ExcludeDocIDs builds `!(docId contains 'id1' or ...)`. Blank ids are
// dropped; an all-blank list renders to the empty string.
func ExcludeDocIDs(ids []string) Exclusion {
	return Exclusion{inner: Include(FieldDocID, ids)}
}

// IsEmpty reports whether no ids survived filtering.
func (e Exclusion) IsEmpty() bool { return e.inner.IsEmpty() }

// Render yields the negated inclusion, or the empty string when empty.
func (e Exclusion) Render() (string, error) {
	if e.inner.IsEmpty() {
		return "", nil
	}
	inner, err := e.inner.Render()
	if err != nil {
		return "", err
	}
	if len(e.inner.values) == 1 {
		return "!(" + inner + ")", nil
	}
	// The inclusion already wraps multiple values in parentheses.
	return "!" + inner, nil
}

// Raw is an uninterpreted YQL fragment, the escape hatch for constructs
// the algebra does not model.
type Raw string

// Render returns the fragment verbatim.
func (r Raw) Render() (string, error) { return string(r), nil }

// group is an ordered conjunction or disjunction with a permission policy.
type group struct {
	joiner   string
	children []Condition
	policy   PermissionPolicy
	err      error
}

func newGroup(joiner string, policy PermissionPolicy, children []Condition) Condition {
	g := group{joiner: joiner, children: children, policy: policy}
	if len(children) == 0 {
		g.err = oops.Code(CodeValidation).
			With("operator", strings.TrimSpace(joiner)).
			Errorf("boolean group requires at least one child")
	}
	return g
}

// And builds a conjunction with no permission scoping.
func And(children ...Condition) Condition {
	return newGroup(" and ", WithoutPermissions(), children)
}

// Or builds a disjunction with no permission scoping.
func Or(children ...Condition) Condition {
	return newGroup(" or ", WithoutPermissions(), children)
}

// AndScoped builds a conjunction carrying the given permission policy.
func AndScoped(policy PermissionPolicy, children ...Condition) Condition {
	return newGroup(" and ", policy, children)
}

// OrScoped builds a disjunction carrying the given permission policy.
func OrScoped(policy PermissionPolicy, children ...Condition) Condition {
	return newGroup(" or ", policy, children)
}

// Render joins child fragments in insertion order, dropping children that
// render to the empty string, and applies the group's permission policy.
func (g group) Render() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	parts := make([]string, 0, len(g.children))
	for _, c := range g.children {
		frag, err := c.Render()
		if err != nil {
			return "", err
		}
		if frag == "" {
			continue
		}
		parts = append(parts, frag)
	}
	if len(parts) == 0 {
		return "", nil
	}
	joined := strings.Join(parts, g.joiner)
	// A multi-child disjunction must parenthesize itself: nested under a
	// conjunction, `a or b and c` would bind the wrong way.
	if g.joiner == " or " && len(parts) > 1 {
		joined = "(" + joined + ")"
	}
	return g.policy.apply(joined), nil
}

// IsEmpty reports whether a condition renders to the empty string without
// error. Useful before embedding optional inclusions and exclusions.
func IsEmpty(c Condition) bool {
	if c == nil {
		return true
	}
	frag, err := c.Render()
	return err == nil && frag == ""
}
