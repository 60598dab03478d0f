package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op string // optional - filter to one operation
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	Op         string          `json:"op"`
	DrugID     string          `json:"drug_id"`
	RecordedOn string          `json:"recorded_on"`
	Payload    json.RawMessage `json:"payload"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	DrugID   string       `json:"drug_id,omitempty"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats counts timeline events per operation.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	ByOp        map[string]int `json:"by_op"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [drug-id]",
		Short: "Show the audit log of custody mutations",
		Long: `Show the recorded mutations for one drug, or for all drugs when no id
is given.

Every registration, shipment, delivery and sale is logged with its
sequence number, the day it was recorded and the operation input.

Examples:
  rxtrace trace d1
  rxtrace trace d1 --op record_sale
  rxtrace trace --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			drugID := ""
			if len(args) == 1 {
				drugID = args[0]
			}
			return runTrace(opts, drugID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to one operation (add_drug, add_shipment, update_shipment_status, record_sale)")
	return cmd
}

func runTrace(opts *TraceOptions, drugID string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var events []store.Event
	if drugID == "" {
		events, err = st.ReadAllEvents(ctx)
	} else {
		events, err = st.ReadEvents(ctx, drugID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		DrugID:   drugID,
		Timeline: buildTimeline(events, opts.Op),
		Stats:    TraceStats{ByOp: map[string]int{}},
	}
	result.Stats.TotalEvents = len(result.Timeline)
	for _, ev := range result.Timeline {
		result.Stats.ByOp[ev.Op]++
	}

	return newFormatter(opts.RootOptions, cmd).Success(result, func(w io.Writer) {
		writeTraceText(w, result, opts.Verbose)
	})
}

// buildTimeline converts store events to timeline events, keeping only
// opFilter when it is set.
func buildTimeline(events []store.Event, opFilter string) []TraceEvent {
	timeline := []TraceEvent{}
	for _, ev := range events {
		if opFilter != "" && ev.Op != opFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:        ev.Seq,
			ID:         ev.ID,
			Op:         ev.Op,
			DrugID:     ev.Subject,
			RecordedOn: ev.RecordedOn,
			Payload:    json.RawMessage(ev.Payload),
		})
	}
	return timeline
}

func writeTraceText(w io.Writer, result TraceResult, verbose bool) {
	if result.DrugID != "" {
		fmt.Fprintf(w, "Trace for Drug: %s\n", result.DrugID)
	} else {
		fmt.Fprintln(w, "Trace for all drugs")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s %-22s %s\n", ev.Seq, ev.RecordedOn, ev.Op, ev.DrugID)
		if verbose {
			fmt.Fprintf(w, "       Payload: %s\n", formatPayload(ev.Payload))
			fmt.Fprintf(w, "       ID: %s\n", truncateID(ev.ID))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	ops := make([]string, 0, len(result.Stats.ByOp))
	for op := range result.Stats.ByOp {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "  %-22s %d\n", op+":", result.Stats.ByOp[op])
	}
}

// formatPayload renders a JSON object payload as sorted key=value pairs.
func formatPayload(raw json.RawMessage) string {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return string(raw)
	}
	return formatArgs(m)
}

// formatArgs formats a map of args for display.
// Uses sorted keys to ensure deterministic output.
func formatArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(args[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a single value for display, handling nested structures deterministically.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case map[string]interface{}:
		return formatArgs(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
