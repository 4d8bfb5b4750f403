package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentsync/internal/model"
)

func TestCommitMessageModifiedAndAdded(t *testing.T) {
	snap := &model.RepositorySnapshot{
		Modified: []string{"a.md", "b.md"},
		Created:  []string{"c.md"},
	}

	assert.Equal(t, "sync: update 3 agent file(s) - 2 modified, 1 added", CommitMessage(snap))
}

func TestCommitMessageDeletedOnly(t *testing.T) {
	snap := &model.RepositorySnapshot{
		Deleted: []string{"x.md"},
	}

	assert.Equal(t, "sync: update 1 agent file(s) - 1 deleted", CommitMessage(snap))
}

func TestCommitMessageFixedBreakdownOrder(t *testing.T) {
	snap := &model.RepositorySnapshot{
		Modified: []string{"m.md"},
		Created:  []string{"a.md"},
		Deleted:  []string{"d.md"},
	}

	assert.Equal(t, "sync: update 3 agent file(s) - 1 modified, 1 added, 1 deleted", CommitMessage(snap))
}

func TestCommitMessageDeterministic(t *testing.T) {
	snap := &model.RepositorySnapshot{Modified: []string{"a.md"}}

	assert.Equal(t, CommitMessage(snap), CommitMessage(snap))
}
