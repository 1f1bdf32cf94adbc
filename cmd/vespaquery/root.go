package main

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/xynehq/vespa-go/search"
)

// Global flags available to all subcommands.
var (
	configFile  string
	metricsAddr string
	logFormat   string
)

// NewRootCmd creates the root command for the vespaquery CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vespaquery",
		Short: "Query a Vespa search cluster from the command line",
		Long: `vespaquery composes permission-scoped hybrid search queries,
sends them to a Vespa cluster and prints the results as JSON.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "expose /metrics and health probes on this address")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format: json or text")

	// Flags mirroring config file keys; explicit values win over the file.
	cmd.PersistentFlags().String("queryEndpoint", "", "query API base URL")
	cmd.PersistentFlags().String("feedEndpoint", "", "document API base URL")
	cmd.PersistentFlags().String("namespace", "", "document API namespace")
	cmd.PersistentFlags().Bool("isDebugMode", false, "add rank-feature listing and tracing to queries")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewGroupsCmd())
	cmd.AddCommand(NewSuggestCmd())
	cmd.AddCommand(NewGetCmd())
	cmd.AddCommand(NewFetchAllCmd())

	return cmd
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// parseMillis accepts either an RFC3339 timestamp or unix milliseconds.
func parseMillis(s string) (int64, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UnixMilli(), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, oops.Code("VALIDATION_FAILED").
			With("value", s).
			Errorf("time must be RFC3339 or unix milliseconds")
	}
	return n, nil
}

// parseTimeRange builds the optional search window from --since/--until.
func parseTimeRange(since, until string) (*search.TimeRange, error) {
	if since == "" && until == "" {
		return nil, nil
	}
	tr := &search.TimeRange{}
	if since != "" {
		ms, err := parseMillis(since)
		if err != nil {
			return nil, err
		}
		tr.From = &ms
	}
	if until != "" {
		ms, err := parseMillis(until)
		if err != nil {
			return nil, err
		}
		tr.To = &ms
	}
	return tr, nil
}
