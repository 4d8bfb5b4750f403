package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsync/internal/model"
)

func TestRecordAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	l := NewLogger(path)

	first := CycleRecord{
		CycleID:   "cycle-1",
		StartedAt: time.Now().Add(-time.Second),
		Status:    model.CycleSuccess,
		Operations: []Operation{
			{Type: OpFetch, Outcome: "success", Files: 2},
			{Type: OpCommit, Outcome: "success", Files: 1},
			{Type: OpPublish, Outcome: "success"},
		},
	}
	second := CycleRecord{
		CycleID: "cycle-2",
		Status:  model.CycleNetworkError,
		Operations: []Operation{
			{Type: OpFetch, Outcome: "failure", Error: "remote unreachable"},
		},
	}

	require.NoError(t, l.Record(first))
	require.NoError(t, l.Record(second))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []CycleRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec CycleRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		got = append(got, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, got, 2)
	assert.Equal(t, "cycle-1", got[0].CycleID)
	assert.Equal(t, model.CycleSuccess, got[0].Status)
	assert.Len(t, got[0].Operations, 3)
	assert.Equal(t, OpFetch, got[0].Operations[0].Type)

	assert.Equal(t, "cycle-2", got[1].CycleID)
	assert.Equal(t, "remote unreachable", got[1].Operations[0].Error)
}

func TestRecordCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "audit.jsonl")

	require.NoError(t, NewLogger(path).Record(CycleRecord{CycleID: "x"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
