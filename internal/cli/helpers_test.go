package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rxtrace/internal/ledger"
	"github.com/roach88/rxtrace/internal/testutil"
)

// cliEnv runs commands against one database with a pinned calendar and
// sequential ids shared across invocations.
type cliEnv struct {
	t     *testing.T
	db    string
	clock *ledger.Clock
	ids   ledger.IDGenerator
}

func newCLIEnv(t *testing.T) *cliEnv {
	return &cliEnv{
		t:     t,
		db:    filepath.Join(t.TempDir(), "rxtrace.db"),
		clock: ledger.NewFixedClock(testutil.Day),
		ids:   ledger.NewSequenceGenerator("id"),
	}
}

// run executes one command line with a fresh root command and returns
// its stdout.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCommand(&RootOptions{Clock: e.clock, IDs: e.ids})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", e.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// mustRun runs a command that must succeed.
func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "output: %s", out)
	return out
}

// decodeData decodes the data field of a JSON CLI response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// seedDelivered registers d1, ships 100 units as s1 and delivers them.
func (e *cliEnv) seedDelivered() {
	e.t.Helper()
	e.mustRun("drug", "register", "--id", "d1", "--name", "Amoxicillin",
		"--serial", "SN1", "--batch", "B1", "--mfg", "2023-12-01", "--expiry", "Dec 1, 2025")
	e.mustRun("shipment", "create", "--id", "s1", "--drug", "d1", "--destination", "Pharmacy North",
		"--quantity", "100", "--temperature", "5", "--date", "2024-01-02")
	e.mustRun("shipment", "deliver", "s1")
}
