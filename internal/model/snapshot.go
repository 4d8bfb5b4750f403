package model

// RepositorySnapshot is a point-in-time view of the working tree and its
// position relative to the remote. A path appears in at most one of the three
// change sets. Produced fresh on every status query, never mutated in place.
type RepositorySnapshot struct {
	Modified     []string `json:"modified"`
	Created      []string `json:"created"`
	Deleted      []string `json:"deleted"`
	AheadCount   int      `json:"ahead"`
	BehindCount  int      `json:"behind"`
	HasConflicts bool     `json:"has_conflicts"`
}

func (s *RepositorySnapshot) ChangeCount() int {
	return len(s.Modified) + len(s.Created) + len(s.Deleted)
}

func (s *RepositorySnapshot) IsClean() bool {
	return s.ChangeCount() == 0
}

// ChangedFiles returns modified and created paths, the set the validator runs
// over. Deleted paths have no content to validate.
func (s *RepositorySnapshot) ChangedFiles() []string {
	files := make([]string, 0, len(s.Modified)+len(s.Created))
	files = append(files, s.Modified...)
	files = append(files, s.Created...)
	return files
}
