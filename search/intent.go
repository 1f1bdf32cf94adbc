// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package search

import (
	"regexp"
	"strings"

	"github.com/xynehq/vespa-go/yql"
)

// Intent is a structured breakdown of an end-user query into mail
// recipient and subject fields.
type Intent struct {
	From    []string
	To      []string
	Cc      []string
	Bcc     []string
	Subject []string
}

// emailShapeRe loosely matches things that look like an email address.
var emailShapeRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsActionable reports whether the intent can narrow a query: it needs
// at least one email-shaped participant or a non-blank subject. An
// intent holding only bare names is a no-op, the lexical query already
// covers those.
func (i *Intent) IsActionable() bool {
	if i == nil {
		return false
	}
	for _, set := range [][]string{i.From, i.To, i.Cc, i.Bcc} {
		for _, v := range set {
			if emailShapeRe.MatchString(strings.TrimSpace(v)) {
				return true
			}
		}
	}
	for _, s := range i.Subject {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Condition renders the intent as a filter: values within a set are
// disjoined, sets are conjoined. Returns nil for non-actionable intents.
func (i *Intent) Condition() yql.Condition {
	if !i.IsActionable() {
		return nil
	}
	sets := []struct {
		field  string
		values []string
	}{
		{"from", i.From},
		{"to", i.To},
		{"cc", i.Cc},
		{"bcc", i.Bcc},
		{"subject", i.Subject},
	}
	var parts []yql.Condition
	for _, set := range sets {
		inc := yql.Include(set.field, set.values)
		if inc.IsEmpty() {
			continue
		}
		parts = append(parts, inc)
	}
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return yql.And(parts...)
}
