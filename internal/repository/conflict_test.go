package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsync/internal/db"
	"agentsync/internal/model"
)

func initDB(t *testing.T) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
}

func TestConflictUpsertPreservesIdentity(t *testing.T) {
	initDB(t)
	repo := NewConflictRepository()

	first := &model.ConflictRecord{
		Path:         "agents/a.md",
		DetectedAt:   time.Now().Add(-time.Hour),
		LocalChanges: "old local",
		Status:       model.ResolutionUnresolved,
	}
	require.NoError(t, repo.Upsert(first))

	second := &model.ConflictRecord{
		Path:         "agents/a.md",
		DetectedAt:   time.Now(),
		LocalChanges: "new local",
		Status:       model.ResolutionUnresolved,
	}
	require.NoError(t, repo.Upsert(second))

	got, err := repo.Get("agents/a.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "new local", got.LocalChanges)
}

func TestConflictGetMissingReturnsNil(t *testing.T) {
	initDB(t)

	got, err := NewConflictRepository().Get("agents/nope.md")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConflictListUnresolvedOrderedByPath(t *testing.T) {
	initDB(t)
	repo := NewConflictRepository()

	for _, path := range []string{"agents/z.md", "agents/a.md", "agents/m.md"} {
		require.NoError(t, repo.Upsert(&model.ConflictRecord{
			Path:       path,
			DetectedAt: time.Now(),
			Status:     model.ResolutionUnresolved,
		}))
	}

	resolved := &model.ConflictRecord{
		Path:       "agents/done.md",
		DetectedAt: time.Now(),
		Status:     model.ResolutionUnresolved,
	}
	require.NoError(t, repo.Upsert(resolved))
	resolved.MarkResolved(model.StrategyKeepLocal, time.Now())
	require.NoError(t, repo.Save(resolved))

	records, err := repo.ListUnresolved()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "agents/a.md", records[0].Path)
	assert.Equal(t, "agents/m.md", records[1].Path)
	assert.Equal(t, "agents/z.md", records[2].Path)
}

func TestConflictClearResolvedKeepsOpenRecords(t *testing.T) {
	initDB(t)
	repo := NewConflictRepository()

	open := &model.ConflictRecord{Path: "agents/open.md", DetectedAt: time.Now(), Status: model.ResolutionUnresolved}
	require.NoError(t, repo.Upsert(open))

	done := &model.ConflictRecord{Path: "agents/done.md", DetectedAt: time.Now(), Status: model.ResolutionUnresolved}
	require.NoError(t, repo.Upsert(done))
	done.MarkResolved(model.StrategyKeepRemote, time.Now())
	require.NoError(t, repo.Save(done))

	require.NoError(t, repo.ClearResolved())

	records, err := repo.ListUnresolved()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "agents/open.md", records[0].Path)

	gone, err := repo.Get("agents/done.md")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
