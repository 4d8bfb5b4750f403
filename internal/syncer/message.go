package syncer

import (
	"fmt"
	"strings"

	"agentsync/internal/model"
)

// CommitMessage renders the deterministic commit message for a snapshot:
// `sync: update <N> agent file(s) - <breakdown>` with non-zero counts listed
// as modified, added, deleted in that fixed order. Timestamps belong to the
// commit metadata, never to the message body.
func CommitMessage(snap *model.RepositorySnapshot) string {
	var parts []string

	if n := len(snap.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}
	if n := len(snap.Created); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(snap.Deleted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", n))
	}

	if len(parts) == 0 {
		return "sync: update 0 agent file(s)"
	}

	return fmt.Sprintf("sync: update %d agent file(s) - %s",
		snap.ChangeCount(), strings.Join(parts, ", "))
}
