package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"

	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/util"
)

type Signature struct {
	Name  string
	Email string
}

// GitBackend implements Backend against an on-disk repository with a
// configured remote, using go-git exclusively (no git binary required).
type GitBackend struct {
	repoPath string
	remote   string
	author   Signature
	repo     *git.Repository
	wt       *git.Worktree
}

func NewGitBackend(repoPath, remote string, author Signature) (*GitBackend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repo path: %w", err)
	}

	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	if remote == "" {
		remote = "origin"
	}

	return &GitBackend{
		repoPath: abs,
		remote:   remote,
		author:   author,
		repo:     repo,
		wt:       wt,
	}, nil
}

// Fetch downloads remote history and integrates it into the working tree.
// Non-overlapping remote changes are applied directly; a path changed on both
// sides with different content gets conflict markers written and is reported
// in ConflictingFiles. The branch reference only advances once no conflicts
// remain.
func (b *GitBackend) Fetch(ctx context.Context) FetchResult {
	st, err := loadState(b.repoPath)
	if err != nil {
		return FetchResult{ErrorMessage: err.Error()}
	}

	if st != nil && len(st.Conflicts) > 0 {
		return FetchResult{
			ConflictingFiles: st.conflictPaths(),
			ErrorMessage:     "unresolved conflicts from a previous fetch",
		}
	}

	err = b.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: b.remote})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		kind, msg := classifyTransportErr(err)
		return FetchResult{ErrKind: kind, ErrorMessage: msg}
	}

	head, err := b.repo.Head()
	if err != nil {
		return FetchResult{ErrorMessage: fmt.Sprintf("failed to resolve HEAD: %v", err)}
	}

	branch := head.Name().Short()
	remoteRef, err := b.repo.Reference(plumbing.NewRemoteReferenceName(b.remote, branch), true)
	if err != nil {
		// No remote branch yet, nothing to integrate.
		return FetchResult{Success: true}
	}

	if remoteRef.Hash() == head.Hash() {
		return FetchResult{Success: true}
	}

	localCommit, err := b.repo.CommitObject(head.Hash())
	if err != nil {
		return FetchResult{ErrorMessage: fmt.Sprintf("failed to load local commit: %v", err)}
	}

	remoteCommit, err := b.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return FetchResult{ErrorMessage: fmt.Sprintf("failed to load remote commit: %v", err)}
	}

	bases, err := localCommit.MergeBase(remoteCommit)
	if err != nil || len(bases) == 0 {
		return FetchResult{ErrorMessage: "local and remote histories are unrelated"}
	}
	base := bases[0]

	if base.Hash == remoteCommit.Hash {
		// Local is strictly ahead; publish will take care of it.
		return FetchResult{Success: true}
	}

	updated, conflicts, err := b.integrate(base, localCommit, remoteCommit, head.Hash() != base.Hash)
	if err != nil {
		return FetchResult{ErrorMessage: err.Error()}
	}

	if len(conflicts) > 0 {
		newState := &mergeState{
			RemoteHead: remoteCommit.Hash.String(),
			Conflicts:  make(map[string]bool, len(conflicts)),
		}
		for _, p := range conflicts {
			newState.Conflicts[p] = true
		}

		if err := saveState(b.repoPath, newState); err != nil {
			return FetchResult{ErrorMessage: err.Error()}
		}

		sort.Strings(conflicts)
		logger.Log.Warn("fetch found diverged files",
			zap.Strings("conflicts", conflicts))

		return FetchResult{
			UpdatedFiles:     updated,
			ConflictingFiles: conflicts,
		}
	}

	if err := b.advance(head, base, remoteCommit, updated); err != nil {
		return FetchResult{ErrorMessage: err.Error()}
	}

	sort.Strings(updated)
	return FetchResult{Success: true, UpdatedFiles: updated}
}

// integrate walks the base→remote diff, applying unchallenged remote changes
// to the worktree and materializing conflict markers for paths the local side
// also touched.
func (b *GitBackend) integrate(base, local, remote *object.Commit, localAhead bool) (updated, conflicts []string, err error) {
	baseTree, err := base.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load base tree: %w", err)
	}

	remoteTree, err := remote.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load remote tree: %w", err)
	}

	localTouched, err := b.localTouchedPaths(baseTree, local, localAhead)
	if err != nil {
		return nil, nil, err
	}

	changes, err := baseTree.Diff(remoteTree)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to diff base against remote: %w", err)
	}

	for _, change := range changes {
		name := changeName(change)
		if name == "" {
			continue
		}

		remoteContent, err := treeContent(remoteTree, name)
		if err != nil {
			return nil, nil, err
		}

		if !localTouched[name] {
			if err := b.applyRemote(name, remoteTree, remoteContent); err != nil {
				return nil, nil, err
			}
			updated = append(updated, name)
			continue
		}

		localContent := b.worktreeContent(name)
		if localContent == remoteContent {
			// Both sides made the identical change.
			continue
		}

		marked := WriteConflictContent(localContent, remoteContent)
		if err := b.writeFile(name, marked); err != nil {
			return nil, nil, err
		}
		conflicts = append(conflicts, name)
	}

	return updated, conflicts, nil
}

// advance moves the branch to include the integrated remote history: a mixed
// reset for a fast-forward, or a two-parent commit when both sides advanced
// without touching the same files.
func (b *GitBackend) advance(head *plumbing.Reference, base, remote *object.Commit, updated []string) error {
	if base.Hash == head.Hash() {
		err := b.wt.Reset(&git.ResetOptions{
			Commit: remote.Hash,
			Mode:   git.MixedReset,
		})
		if err != nil {
			return fmt.Errorf("failed to fast-forward to remote: %w", err)
		}
		return nil
	}

	for _, name := range updated {
		if err := b.stage(name); err != nil {
			return err
		}
	}

	sig := b.signature()
	_, err := b.wt.Commit("sync: merge remote changes", &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           []plumbing.Hash{head.Hash(), remote.Hash},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create merge commit: %w", err)
	}

	logger.Log.Info("merged remote changes",
		zap.String("remote_head", remote.Hash.String()),
		zap.Int("files", len(updated)))

	return nil
}

// localTouchedPaths collects every path the local side has changed relative to
// the merge base: dirty worktree entries plus files changed in local commits.
func (b *GitBackend) localTouchedPaths(baseTree *object.Tree, local *object.Commit, localAhead bool) (map[string]bool, error) {
	touched := make(map[string]bool)

	status, err := b.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}

	for path, fs := range status {
		if fs.Worktree != git.Unmodified || fs.Staging != git.Unmodified {
			touched[path] = true
		}
	}

	if localAhead {
		localTree, err := local.Tree()
		if err != nil {
			return nil, fmt.Errorf("failed to load local tree: %w", err)
		}

		changes, err := baseTree.Diff(localTree)
		if err != nil {
			return nil, fmt.Errorf("failed to diff base against local: %w", err)
		}

		for _, change := range changes {
			if name := changeName(change); name != "" {
				touched[name] = true
			}
		}
	}

	return touched, nil
}

func (b *GitBackend) applyRemote(name string, remoteTree *object.Tree, content string) error {
	if _, err := remoteTree.File(name); errors.Is(err, object.ErrFileNotFound) {
		return util.RemoveIfExists(filepath.Join(b.repoPath, name))
	}

	return b.writeFile(name, content)
}

// Commit stages the given files (removals included) and records a commit.
// When a completed conflict resolution is pending it closes the merge with
// both parents and clears the merge state.
func (b *GitBackend) Commit(ctx context.Context, message string, files []string) CommitResult {
	st, err := loadState(b.repoPath)
	if err != nil {
		return CommitResult{ErrorMessage: err.Error()}
	}

	if st != nil && len(st.Conflicts) > 0 {
		return CommitResult{ErrorMessage: "cannot commit with unresolved conflicts"}
	}

	for _, f := range files {
		if err := b.stage(f); err != nil {
			return CommitResult{ErrorMessage: err.Error()}
		}
	}

	status, err := b.wt.Status()
	if err != nil {
		return CommitResult{ErrorMessage: fmt.Sprintf("failed to get worktree status: %v", err)}
	}

	staged := 0
	for _, fs := range status {
		if fs.Staging != git.Untracked && fs.Staging != git.Unmodified {
			staged++
		}
	}

	mergePending := st != nil && st.RemoteHead != ""

	if staged == 0 && !mergePending {
		return CommitResult{Success: true, NothingToCommit: true}
	}

	sig := b.signature()
	opts := &git.CommitOptions{Author: sig, Committer: sig}

	if mergePending {
		head, err := b.repo.Head()
		if err != nil {
			return CommitResult{ErrorMessage: fmt.Sprintf("failed to resolve HEAD: %v", err)}
		}
		opts.Parents = []plumbing.Hash{head.Hash(), plumbing.NewHash(st.RemoteHead)}
		opts.AllowEmptyCommits = true
	}

	hash, err := b.wt.Commit(message, opts)
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return CommitResult{Success: true, NothingToCommit: true}
		}
		return CommitResult{ErrorMessage: fmt.Sprintf("commit failed: %v", err)}
	}

	if mergePending {
		if err := clearState(b.repoPath); err != nil {
			return CommitResult{ErrorMessage: err.Error()}
		}
	}

	return CommitResult{Success: true, CommitID: hash.String()}
}

// Publish pushes the current branch. A non-fast-forward rejection is reported
// as IsBehindRemote, not as a generic failure.
func (b *GitBackend) Publish(ctx context.Context) PublishResult {
	st, err := loadState(b.repoPath)
	if err != nil {
		return PublishResult{ErrorMessage: err.Error()}
	}

	if st != nil && len(st.Conflicts) > 0 {
		return PublishResult{ErrorMessage: "cannot publish with unresolved conflicts"}
	}

	err = b.repo.PushContext(ctx, &git.PushOptions{RemoteName: b.remote})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return PublishResult{Success: true}
	}

	if errors.Is(err, git.ErrNonFastForwardUpdate) ||
		strings.Contains(err.Error(), "non-fast-forward") {
		return PublishResult{IsBehindRemote: true, ErrorMessage: err.Error()}
	}

	kind, msg := classifyTransportErr(err)
	return PublishResult{ErrKind: kind, ErrorMessage: msg}
}

// Status produces a fresh snapshot of working-tree change sets and the
// ahead/behind position. Conflicted paths are excluded from the three change
// sets and surfaced through HasConflicts.
func (b *GitBackend) Status(ctx context.Context) (*model.RepositorySnapshot, error) {
	st, err := loadState(b.repoPath)
	if err != nil {
		return nil, err
	}

	conflicted := make(map[string]bool)
	if st != nil {
		for p := range st.Conflicts {
			conflicted[p] = true
		}
	}

	status, err := b.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}

	snap := &model.RepositorySnapshot{HasConflicts: len(conflicted) > 0}

	for path, fs := range status {
		if conflicted[path] {
			continue
		}

		switch {
		case fs.Worktree == git.Untracked || fs.Staging == git.Added:
			snap.Created = append(snap.Created, path)
		case fs.Worktree == git.Deleted || fs.Staging == git.Deleted:
			snap.Deleted = append(snap.Deleted, path)
		case fs.Worktree == git.Modified || fs.Staging == git.Modified:
			snap.Modified = append(snap.Modified, path)
		}
	}

	sort.Strings(snap.Modified)
	sort.Strings(snap.Created)
	sort.Strings(snap.Deleted)

	ahead, behind, err := b.divergence()
	if err != nil {
		return nil, err
	}
	snap.AheadCount = ahead
	snap.BehindCount = behind

	return snap, nil
}

// SelectSide resolves a conflicted path by keeping one side, staging the
// result and dropping the path from the merge state.
func (b *GitBackend) SelectSide(ctx context.Context, path string, side Side) error {
	st, err := loadState(b.repoPath)
	if err != nil {
		return err
	}

	if st == nil || !st.Conflicts[path] {
		return fmt.Errorf("%s is not in conflict", path)
	}

	content := b.worktreeContent(path)

	var resolved string
	var remove bool

	switch {
	case ContainsMarkers(content):
		resolved = StripMarkers(content, side)
	case side == SideRemote:
		remoteCommit, err := b.repo.CommitObject(plumbing.NewHash(st.RemoteHead))
		if err != nil {
			return fmt.Errorf("failed to load remote commit: %w", err)
		}
		remoteTree, err := remoteCommit.Tree()
		if err != nil {
			return fmt.Errorf("failed to load remote tree: %w", err)
		}
		if _, err := remoteTree.File(path); errors.Is(err, object.ErrFileNotFound) {
			remove = true
		} else {
			resolved, err = treeContent(remoteTree, path)
			if err != nil {
				return err
			}
		}
	default:
		resolved = content
	}

	if remove {
		if err := util.RemoveIfExists(filepath.Join(b.repoPath, path)); err != nil {
			return err
		}
	} else if err := b.writeFile(path, resolved); err != nil {
		return err
	}

	if err := b.stage(path); err != nil {
		return err
	}

	st.resolved(path)
	if err := saveState(b.repoPath, st); err != nil {
		return err
	}

	logger.Log.Info("conflict side selected",
		zap.String("path", path),
		zap.String("side", string(side)))

	return nil
}

func (b *GitBackend) HasConflictMarkers(path string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(b.repoPath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return ContainsMarkers(string(data)), nil
}

func (b *GitBackend) IsConflicted(path string) (bool, error) {
	st, err := loadState(b.repoPath)
	if err != nil {
		return false, err
	}

	return st != nil && st.Conflicts[path], nil
}

func (b *GitBackend) divergence() (ahead, behind int, err error) {
	head, err := b.repo.Head()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	remoteRef, err := b.repo.Reference(plumbing.NewRemoteReferenceName(b.remote, head.Name().Short()), true)
	if err != nil {
		// No remote branch: everything local is unpublished.
		n, err := b.countReachable(head.Hash())
		return n, 0, err
	}

	if remoteRef.Hash() == head.Hash() {
		return 0, 0, nil
	}

	localSet, err := b.reachableSet(head.Hash())
	if err != nil {
		return 0, 0, err
	}

	remoteSet, err := b.reachableSet(remoteRef.Hash())
	if err != nil {
		return 0, 0, err
	}

	for h := range localSet {
		if !remoteSet[h] {
			ahead++
		}
	}
	for h := range remoteSet {
		if !localSet[h] {
			behind++
		}
	}

	return ahead, behind, nil
}

func (b *GitBackend) reachableSet(from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	commit, err := b.repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", from, err)
	}

	set := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}

	return set, nil
}

func (b *GitBackend) countReachable(from plumbing.Hash) (int, error) {
	set, err := b.reachableSet(from)
	if err != nil {
		return 0, err
	}
	return len(set), nil
}

func (b *GitBackend) stage(path string) error {
	full := filepath.Join(b.repoPath, path)
	if _, err := os.Stat(full); err == nil {
		if _, err := b.wt.Add(path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
		return nil
	}

	if _, err := b.wt.Remove(path); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "entry not found") && !strings.Contains(msg, "does not exist") {
			return fmt.Errorf("failed to stage removal of %s: %w", path, err)
		}
	}

	return nil
}

func (b *GitBackend) worktreeContent(path string) string {
	data, err := os.ReadFile(filepath.Join(b.repoPath, path))
	if err != nil {
		return ""
	}
	return string(data)
}

func (b *GitBackend) writeFile(path, content string) error {
	full := filepath.Join(b.repoPath, path)
	if err := util.AtomicWrite(full, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (b *GitBackend) signature() *object.Signature {
	return &object.Signature{
		Name:  b.author.Name,
		Email: b.author.Email,
		When:  time.Now(),
	}
}

func treeContent(tree *object.Tree, path string) (string, error) {
	f, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up %s: %w", path, err)
	}

	content, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read blob for %s: %w", path, err)
	}

	return content, nil
}

func changeName(c *object.Change) string {
	if c.To.Name != "" {
		return c.To.Name
	}
	return c.From.Name
}

func classifyTransportErr(err error) (model.ErrorKind, string) {
	msg := err.Error()

	if errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed) ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "authorization") {
		return model.ErrorKindAuth, msg
	}

	return model.ErrorKindNetwork, msg
}
