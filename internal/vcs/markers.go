package vcs

import "strings"

// Conflict marker tokens written into diverged files, matching the ones git
// itself produces so any merge tool can operate on them.
const (
	MarkerStart   = "<<<<<<<"
	MarkerDivider = "======="
	MarkerEnd     = ">>>>>>>"

	labelLocal  = "LOCAL"
	labelRemote = "REMOTE"
)

// WriteConflictContent renders a whole-file conflict hunk from the two sides.
func WriteConflictContent(local, remote string) string {
	var b strings.Builder
	b.WriteString(MarkerStart + " " + labelLocal + "\n")
	b.WriteString(local)
	if local != "" && !strings.HasSuffix(local, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(MarkerDivider + "\n")
	b.WriteString(remote)
	if remote != "" && !strings.HasSuffix(remote, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(MarkerEnd + " " + labelRemote + "\n")
	return b.String()
}

// ContainsMarkers reports whether any line of content opens with a conflict
// marker token.
func ContainsMarkers(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, MarkerStart) ||
			strings.HasPrefix(line, MarkerDivider) ||
			strings.HasPrefix(line, MarkerEnd) {
			return true
		}
	}
	return false
}

// ParseHunks splits marker-delimited content into its local and remote
// fragments. Multiple hunks are concatenated into the two returned strings;
// a file with several independent hunks is treated as one conflict unit.
func ParseHunks(content string) (local, remote string) {
	var localParts, remoteParts []string
	var cur []string

	const (
		outside = iota
		inLocal
		inRemote
	)
	state := outside

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, MarkerStart):
			state = inLocal
			cur = nil
		case strings.HasPrefix(line, MarkerDivider) && state == inLocal:
			localParts = append(localParts, strings.Join(cur, "\n"))
			state = inRemote
			cur = nil
		case strings.HasPrefix(line, MarkerEnd) && state == inRemote:
			remoteParts = append(remoteParts, strings.Join(cur, "\n"))
			state = outside
			cur = nil
		default:
			if state != outside {
				cur = append(cur, line)
			}
		}
	}

	return strings.Join(localParts, "\n"), strings.Join(remoteParts, "\n")
}

// StripMarkers resolves marker-delimited content by keeping one side of every
// hunk and passing unconflicted lines through untouched.
func StripMarkers(content string, side Side) string {
	var out []string

	const (
		outside = iota
		inLocal
		inRemote
	)
	state := outside

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, MarkerStart):
			state = inLocal
		case strings.HasPrefix(line, MarkerDivider) && state != outside:
			state = inRemote
		case strings.HasPrefix(line, MarkerEnd) && state != outside:
			state = outside
		default:
			switch state {
			case outside:
				out = append(out, line)
			case inLocal:
				if side == SideLocal {
					out = append(out, line)
				}
			case inRemote:
				if side == SideRemote {
					out = append(out, line)
				}
			}
		}
	}

	return strings.Join(out, "\n")
}
