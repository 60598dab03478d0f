package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rxtrace/internal/ir"
)

// GoldenDir is where golden snapshots live, relative to the test package.
const GoldenDir = "testdata/golden"

// Snapshot renders the scenario's trace and final collections as
// canonical JSON. The bytes are stable across runs, which makes them
// suitable for golden comparison.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	today := scenario.Today
	if today == "" {
		today = DefaultToday
	}

	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		m := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Action != "" {
			m["action"] = event.Action
		}
		if event.Args != nil {
			m["args"] = event.Args
		}
		if event.OutputCase != "" {
			m["output_case"] = event.OutputCase
		}
		if r, ok := event.Result.(map[string]any); ok && r != nil {
			m["result"] = r
		}
		trace[i] = m
	}

	state := make(map[string]any, len(result.State))
	for k, v := range result.State {
		state[k] = v
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenario.Name,
		"today":         today,
		"trace":         trace,
		"state":         state,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
