package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: minimal
description: Registers one drug
flow:
  - invoke: add_drug
    args:
      name: Aspirin
      serialNumber: SN1
      batchNumber: B1
      manufacturingDate: "2024-01-01"
      expiryDate: "2026-01-01"
assertions:
  - type: trace_count
    action: add_drug
    count: 1
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Empty(t, s.Today)
	require.Len(t, s.Flow, 1)
	assert.Equal(t, "add_drug", s.Flow[0].Invoke)
	assert.Equal(t, "SN1", s.Flow[0].Args["serialNumber"])
	assert.Nil(t, s.Flow[0].Expect)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, 1, s.Assertions[0].Count)
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Flow)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "Registers one drug", s.Description)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown top-level field",
			yaml: minimalYAML + "assertion: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "description is required",
		},
		{
			name: "bad today",
			yaml: "name: n\ndescription: d\ntoday: 15/01/2024\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "today",
		},
		{
			name: "empty flow",
			yaml: "name: n\ndescription: d\nflow: []\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "flow list is required",
		},
		{
			name: "no assertions",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}}]\n",
			want: "assertions list is required",
		},
		{
			name: "unknown operation",
			yaml: "name: n\ndescription: d\nflow: [{invoke: ship_it, args: {}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: `unknown operation "ship_it"`,
		},
		{
			name: "unknown setup action",
			yaml: "name: n\ndescription: d\nsetup: [{action: ship_it, args: {}}]\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: `setup[0]: unknown action "ship_it"`,
		},
		{
			name: "missing args",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "flow[0]: args is required",
		},
		{
			name: "expect without case",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}, expect: {result: {id: x}}}]\nassertions: [{type: trace_count, action: add_drug}]\n",
			want: "case is required",
		},
		{
			name: "final_state unknown collection",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: final_state, collection: sales, where: {id: x}, expect: {quantity: 1}}]\n",
			want: `unknown collection "sales"`,
		},
		{
			name: "final_state without where",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: final_state, collection: drugs, expect: {status: Sold}}]\n",
			want: "where is required",
		},
		{
			name: "trace_order without actions",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: trace_order}]\n",
			want: "actions list is required",
		},
		{
			name: "unknown assertion type",
			yaml: "name: n\ndescription: d\nflow: [{invoke: add_drug, args: {}}]\nassertions: [{type: eventually}]\n",
			want: `unknown assertion type "eventually"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
