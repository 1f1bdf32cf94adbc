// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"search", "groups", "suggest", "get", "fetchall"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestParseMillis(t *testing.T) {
	ms, err := parseMillis("2026-08-24T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC).UnixMilli(), ms)

	ms, err = parseMillis("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms)

	_, err = parseMillis("yesterday")
	require.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	tr, err := parseTimeRange("", "")
	require.NoError(t, err)
	assert.Nil(t, tr)

	tr, err = parseTimeRange("1000", "")
	require.NoError(t, err)
	require.NotNil(t, tr.From)
	assert.Equal(t, int64(1000), *tr.From)
	assert.Nil(t, tr.To)

	tr, err = parseTimeRange("", "2000")
	require.NoError(t, err)
	assert.Nil(t, tr.From)
	require.NotNil(t, tr.To)
	assert.Equal(t, int64(2000), *tr.To)

	_, err = parseTimeRange("bad", "")
	require.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]string{"a": "b"}))
	assert.JSONEq(t, `{"a":"b"}`, buf.String())
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	cmd := NewSearchCmd()
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"q"}))
}

func TestGetCmd_RequiresSchemaAndID(t *testing.T) {
	cmd := NewGetCmd()
	require.Error(t, cmd.Args(cmd, []string{"file"}))
	require.NoError(t, cmd.Args(cmd, []string{"file", "doc-1"}))
}
