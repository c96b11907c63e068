package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemberListPreservesInsertionOrder(t *testing.T) {
	req := require.New(t)
	var l memberList

	req.True(l.add("c"))
	req.True(l.add("a"))
	req.True(l.add("b"))
	req.False(l.add("a"), "duplicates are rejected")
	req.Equal([]string{"c", "a", "b"}, l.snapshot())

	req.True(l.remove("a"))
	req.False(l.remove("a"))
	req.Equal([]string{"c", "b"}, l.snapshot())

	l.clear()
	req.Equal(0, l.len())
}

func TestMemberListSnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	var l memberList
	l.add("a")

	snap := l.snapshot()
	snap[0] = "mutated"
	req.Equal([]string{"a"}, l.snapshot())
}
