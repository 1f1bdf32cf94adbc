// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package yql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// fieldNameRe matches identifiers Vespa accepts as schema field names.
var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EscapeString escapes a string for embedding inside a single-quoted YQL
// literal: backslashes first, then single quotes. The caller adds the quotes.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// Literal renders a Go value as a YQL literal. Strings are escaped and
// single-quoted; numbers and booleans render bare.
func Literal(v any) string {
	switch t := v.(type) {
	case string:
		return "'" + EscapeString(t) + "'"
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ValidateFieldName rejects names that cannot appear as a YQL field
// reference. Field names are embedded unquoted, so anything outside the
// identifier alphabet would change the meaning of the query.
func ValidateFieldName(name string) error {
	if name == "" {
		return oops.Code(CodeValidation).Errorf("field name cannot be empty")
	}
	if !fieldNameRe.MatchString(name) {
		return oops.Code(CodeValidation).
			With("field", name).
			Errorf("invalid field name %q", name)
	}
	return nil
}
