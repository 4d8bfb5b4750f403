package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHunksSingle(t *testing.T) {
	content := "intro\n<<<<<<< LOCAL\nours\n=======\ntheirs\n>>>>>>> REMOTE\noutro\n"

	local, remote := ParseHunks(content)

	assert.Equal(t, "ours", local)
	assert.Equal(t, "theirs", remote)
}

func TestParseHunksFlattensMultipleHunks(t *testing.T) {
	content := "<<<<<<< LOCAL\na\n=======\nb\n>>>>>>> REMOTE\nmiddle\n" +
		"<<<<<<< LOCAL\nc\n=======\nd\n>>>>>>> REMOTE\n"

	local, remote := ParseHunks(content)

	assert.Equal(t, "a\nc", local)
	assert.Equal(t, "b\nd", remote)
}

func TestParseHunksNoMarkers(t *testing.T) {
	local, remote := ParseHunks("plain content\n")

	assert.Empty(t, local)
	assert.Empty(t, remote)
}

func TestStripMarkersKeepsChosenSide(t *testing.T) {
	content := "before\n<<<<<<< LOCAL\nours\n=======\ntheirs\n>>>>>>> REMOTE\nafter"

	assert.Equal(t, "before\nours\nafter", StripMarkers(content, SideLocal))
	assert.Equal(t, "before\ntheirs\nafter", StripMarkers(content, SideRemote))
}

func TestStripMarkersPassthrough(t *testing.T) {
	content := "no conflict here"
	assert.Equal(t, content, StripMarkers(content, SideLocal))
}

func TestContainsMarkers(t *testing.T) {
	assert.True(t, ContainsMarkers("<<<<<<< LOCAL\nx\n=======\ny\n>>>>>>> REMOTE"))
	assert.False(t, ContainsMarkers("x == y"))
	assert.False(t, ContainsMarkers("  <<<<<<< indented is not a marker"))
}

func TestWriteConflictContentRoundTrip(t *testing.T) {
	content := WriteConflictContent("local text\n", "remote text\n")

	assert.True(t, ContainsMarkers(content))

	local, remote := ParseHunks(content)
	assert.Equal(t, "local text", local)
	assert.Equal(t, "remote text", remote)
}
