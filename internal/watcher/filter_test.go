package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsync/internal/model"
)

func TestShouldIgnore(t *testing.T) {
	ignore := []string{".git", "*.tmp", "node_modules"}

	assert.True(t, shouldIgnore("/repo/.git/config", ignore))
	assert.True(t, shouldIgnore("/repo/agents/draft.tmp", ignore))
	assert.True(t, shouldIgnore("/repo/node_modules/pkg/index.js", ignore))
	assert.False(t, shouldIgnore("/repo/agents/helper.md", ignore))
	assert.False(t, shouldIgnore("/repo/tmp-notes/a.md", ignore))
}

func TestFilterDropsIgnoredEvents(t *testing.T) {
	inCh := make(chan model.FileEvent, 4)
	outCh := Filter(inCh, []string{"*.tmp"})

	inCh <- model.FileEvent{Type: model.EventWrite, Path: "/repo/a.md"}
	inCh <- model.FileEvent{Type: model.EventWrite, Path: "/repo/b.tmp"}
	inCh <- model.FileEvent{Type: model.EventCreate, Path: "/repo/c.md"}
	close(inCh)

	var got []string
	for event := range outCh {
		got = append(got, event.Path)
	}

	assert.Equal(t, []string{"/repo/a.md", "/repo/c.md"}, got)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	inCh := make(chan model.FileEvent, 8)
	outCh := Debounce(inCh, 30*time.Millisecond)

	for i := 0; i < 5; i++ {
		inCh <- model.FileEvent{Type: model.EventWrite, Path: "/repo/a.md", Timestamp: time.Now()}
	}
	close(inCh)

	var got []model.FileEvent
	for event := range outCh {
		got = append(got, event)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "/repo/a.md", got[0].Path)
}

func TestDebounceKeepsDistinctPaths(t *testing.T) {
	inCh := make(chan model.FileEvent, 8)
	outCh := Debounce(inCh, 20*time.Millisecond)

	inCh <- model.FileEvent{Type: model.EventWrite, Path: "/repo/a.md"}
	inCh <- model.FileEvent{Type: model.EventWrite, Path: "/repo/b.md"}
	close(inCh)

	paths := map[string]bool{}
	for event := range outCh {
		paths[event.Path] = true
	}

	assert.True(t, paths["/repo/a.md"])
	assert.True(t, paths["/repo/b.md"])
}
