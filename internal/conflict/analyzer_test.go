package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentsync/internal/model"
)

func TestAnalyzeParsesFragments(t *testing.T) {
	raw := "<<<<<<< LOCAL\nlocal line\n=======\nremote line\n>>>>>>> REMOTE\n"

	record := NewAnalyzer().Analyze("notes.md", raw)

	assert.Equal(t, "notes.md", record.Path)
	assert.Equal(t, "local line", record.LocalChanges)
	assert.Equal(t, "remote line", record.RemoteChanges)
	assert.Equal(t, model.ResolutionUnresolved, record.Status)
	assert.False(t, record.DetectedAt.IsZero())
}

func TestClassifyEmptyRemoteSuggestsKeepLocal(t *testing.T) {
	c := NewAnalyzer().Classify(&model.ConflictRecord{
		LocalChanges:  "content",
		RemoteChanges: "   \n\t",
	})

	assert.True(t, c.CanAutoResolve)
	assert.Equal(t, model.StrategyKeepLocal, c.Suggested)
}

func TestClassifyEmptyLocalSuggestsKeepRemote(t *testing.T) {
	c := NewAnalyzer().Classify(&model.ConflictRecord{
		LocalChanges:  "",
		RemoteChanges: "content",
	})

	assert.True(t, c.CanAutoResolve)
	assert.Equal(t, model.StrategyKeepRemote, c.Suggested)
}

// The empty-fragment rule is deliberately not symmetric: swapping the
// fragments flips the suggested side.
func TestClassifyEmptyFragmentAsymmetry(t *testing.T) {
	analyzer := NewAnalyzer()

	ab := analyzer.Classify(&model.ConflictRecord{LocalChanges: "x", RemoteChanges: ""})
	ba := analyzer.Classify(&model.ConflictRecord{LocalChanges: "", RemoteChanges: "x"})

	assert.True(t, ab.CanAutoResolve)
	assert.True(t, ba.CanAutoResolve)
	assert.NotEqual(t, ab.Suggested, ba.Suggested)
}

func TestClassifyIdenticalAfterWhitespaceStrip(t *testing.T) {
	c := NewAnalyzer().Classify(&model.ConflictRecord{
		LocalChanges:  "foo",
		RemoteChanges: "  foo  ",
	})

	assert.True(t, c.CanAutoResolve)
	assert.Equal(t, model.StrategyKeepLocal, c.Suggested)
}

// The identical-content rule is commutative: either orientation suggests the
// same deterministic tie-break.
func TestClassifyIdenticalRuleCommutative(t *testing.T) {
	analyzer := NewAnalyzer()

	ab := analyzer.Classify(&model.ConflictRecord{LocalChanges: "a b", RemoteChanges: "ab"})
	ba := analyzer.Classify(&model.ConflictRecord{LocalChanges: "ab", RemoteChanges: "a b"})

	assert.Equal(t, ab, ba)
	assert.Equal(t, model.StrategyKeepLocal, ab.Suggested)
}

func TestClassifyDivergentContentGoesManual(t *testing.T) {
	c := NewAnalyzer().Classify(&model.ConflictRecord{
		LocalChanges:  "alpha",
		RemoteChanges: "beta",
	})

	assert.False(t, c.CanAutoResolve)
	assert.Equal(t, model.StrategyManual, c.Suggested)
}
