package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxtrace/internal/store"
)

func TestTraceNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text", Database: "/nonexistent/path/test.db"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"d1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestTraceEmptyLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"unknown-drug"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Trace for Drug: unknown-drug")
	assert.Contains(t, buf.String(), "(no events)")
	assert.Contains(t, buf.String(), "Total Events: 0")
}

func TestTraceDrugTimeline(t *testing.T) {
	env := newCLIEnv(t)
	env.seedDelivered()
	env.mustRun("sale", "record", "--drug", "d1", "--quantity", "3",
		"--customer", "Alice", "--customer-id", "C1", "--date", "2024-01-20")
	// Refused operations are not logged.
	_, err := env.run("shipment", "deliver", "s1")
	require.Error(t, err)

	out := env.mustRun("--format", "json", "trace", "d1")
	var result TraceResult
	decodeData(t, out, &result)

	assert.Equal(t, "d1", result.DrugID)
	require.Len(t, result.Timeline, 4)
	ops := make([]string, len(result.Timeline))
	for i, ev := range result.Timeline {
		ops[i] = ev.Op
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Equal(t, "d1", ev.DrugID)
		assert.Equal(t, "2024-01-15", ev.RecordedOn)
	}
	assert.Equal(t, []string{"add_drug", "add_shipment", "update_shipment_status", "record_sale"}, ops)
	assert.Equal(t, 4, result.Stats.TotalEvents)
	assert.Equal(t, 1, result.Stats.ByOp["record_sale"])

	var sale map[string]any
	require.NoError(t, json.Unmarshal(result.Timeline[3].Payload, &sale))
	assert.Equal(t, "Alice", sale["customerName"])
	assert.Equal(t, float64(3), sale["quantity"])
}

func TestTraceOpFilterAndText(t *testing.T) {
	env := newCLIEnv(t)
	env.seedDelivered()

	out := env.mustRun("--verbose", "trace", "d1", "--op", "add_shipment")
	assert.Contains(t, out, "Trace for Drug: d1")
	assert.Contains(t, out, "[2] 2024-01-15 add_shipment")
	assert.NotContains(t, out, "add_drug ")
	assert.Contains(t, out, "Payload: {destination=Pharmacy North")
	assert.Contains(t, out, "Total Events: 1")
	assert.Contains(t, out, "add_shipment:")
}

func TestTraceAllDrugs(t *testing.T) {
	env := newCLIEnv(t)
	env.seedDelivered()
	env.mustRun("drug", "register", "--id", "d2", "--name", "Ibuprofen",
		"--serial", "SN2", "--batch", "B2", "--mfg", "2023-12-01", "--expiry", "2025-12-01")

	out := env.mustRun("--format", "json", "trace")
	var result TraceResult
	decodeData(t, out, &result)
	assert.Empty(t, result.DrugID)
	assert.Len(t, result.Timeline, 4)
	assert.Equal(t, 2, result.Stats.ByOp["add_drug"])
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "{}", formatArgs(nil))
	assert.Equal(t,
		"{a=1, b={c=[x, y]}}",
		formatArgs(map[string]interface{}{
			"b": map[string]interface{}{"c": []interface{}{"x", "y"}},
			"a": 1,
		}))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "id-1", truncateID("id-1"))
	assert.Equal(t, "0190a1b2...c3d4e5f6", truncateID("0190a1b2-0000-7000-8000-0000c3d4e5f6"))
}
