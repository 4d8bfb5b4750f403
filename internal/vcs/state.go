package vcs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const mergeStateFile = "agentsync-merge.json"

// mergeState records an in-progress integration of remote history, the
// analogue of git's MERGE_HEAD. It survives process restarts so a conflict
// detected in one invocation is still known to the next.
type mergeState struct {
	RemoteHead string          `json:"remote_head"`
	Conflicts  map[string]bool `json:"conflicts"`
}

func (s *mergeState) conflictPaths() []string {
	paths := make([]string, 0, len(s.Conflicts))
	for p := range s.Conflicts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *mergeState) resolved(path string) {
	delete(s.Conflicts, path)
}

func statePath(repoPath string) string {
	return filepath.Join(repoPath, ".git", mergeStateFile)
}

func loadState(repoPath string) (*mergeState, error) {
	data, err := os.ReadFile(statePath(repoPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read merge state: %w", err)
	}

	var st mergeState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode merge state: %w", err)
	}

	if st.Conflicts == nil {
		st.Conflicts = make(map[string]bool)
	}

	return &st, nil
}

func saveState(repoPath string, st *mergeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode merge state: %w", err)
	}

	if err := os.WriteFile(statePath(repoPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write merge state: %w", err)
	}

	return nil
}

func clearState(repoPath string) error {
	if err := os.Remove(statePath(repoPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear merge state: %w", err)
	}

	return nil
}
