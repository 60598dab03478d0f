package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
	"github.com/roach88/rxtrace/internal/store"
	"github.com/roach88/rxtrace/internal/testutil"
	"github.com/roach88/rxtrace/internal/verify"
)

// Harness executes one scenario against a fresh ledger.
type Harness struct {
	store    *store.Store
	ledger   *ledger.Ledger
	resolver *verify.Resolver
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// ledger calendar is pinned to the scenario's Today and ids are drawn from
// a sequence, so a scenario always produces the same trace and state.
//
// Execution flow:
// 1. Create fresh in-memory database and ledger
// 2. Execute setup steps (each must succeed)
// 3. Execute flow steps with expect validation
// 4. Capture the final collections
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	today := scenario.Today
	if today == "" {
		today = DefaultToday
	}
	day, err := ir.ParseDate(today)
	if err != nil {
		return nil, fmt.Errorf("scenario today: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.DiscardLogger()
	l, err := ledger.Open(ctx, st,
		ledger.WithClock(ledger.NewFixedClock(day)),
		ledger.WithIDGenerator(ledger.NewSequenceGenerator("id")),
		ledger.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	h := &Harness{
		store:    st,
		ledger:   l,
		resolver: verify.NewResolver(l),
		clock:    testutil.NewDeterministicClock(),
		logger:   logger,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	h.executeFlow(ctx, scenario.Flow, result)
	h.captureState(result)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSetup runs all setup steps. A failing setup step aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		result.AddInvocationTrace(step.Action, traceArgs(step.Args), h.clock.Next())

		out, err := h.execute(ctx, step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		result.AddCompletionTrace(CaseSuccess, out, h.clock.Next())
	}
	return nil
}

// executeFlow runs the flow steps and checks each expect clause.
// Mismatches are recorded on the result; the flow continues so that one
// run reports every failing step.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		result.AddInvocationTrace(step.Invoke, traceArgs(step.Args), h.clock.Next())

		out, err := h.execute(ctx, step.Invoke, step.Args)
		got := outcome(err)
		if err != nil {
			h.logger.Debug("step failed", "step", i, "op", step.Invoke, "error", err)
			result.AddCompletionTrace(got, nil, h.clock.Next())
		} else {
			result.AddCompletionTrace(got, out, h.clock.Next())
		}

		want := CaseSuccess
		if step.Expect != nil {
			want = step.Expect.Case
		}
		if got != want {
			msg := fmt.Sprintf("flow[%d] %s: expected case %q, got %q", i, step.Invoke, want, got)
			if err != nil {
				msg += fmt.Sprintf(" (%v)", err)
			}
			result.AddError(msg)
			continue
		}

		if step.Expect != nil && len(step.Expect.Result) > 0 {
			if key, ok := subsetMismatch(out, step.Expect.Result); ok {
				result.AddError(fmt.Sprintf("flow[%d] %s: result field %q = %v, want %v",
					i, step.Invoke, key, normalize(out[key]), normalize(step.Expect.Result[key])))
			}
		}
	}
}

// captureState stores the final collections as canonical record maps.
func (h *Harness) captureState(result *Result) {
	result.State[ir.CollectionDrugs] = canonicalList(h.ledger.Drugs(), ir.Drug.Canonical)
	result.State[ir.CollectionShipments] = canonicalList(h.ledger.Shipments(), ir.Shipment.Canonical)
	result.State[ir.CollectionInventory] = canonicalList(h.ledger.Inventory(), ir.InventoryItem.Canonical)
}

func canonicalList[T any](records []T, canonical func(T) map[string]any) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = canonical(r)
	}
	return out
}

// traceArgs copies args into canonical-JSON-safe values.
func traceArgs(args map[string]interface{}) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		out[k] = normalize(v)
	}
	return out
}
