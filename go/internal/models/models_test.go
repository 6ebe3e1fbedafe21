package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMembers_DoesNotAlias(t *testing.T) {
	src := []Member{{ID: 1, Name: "A", Score: 1, Rank: 1}}
	out := CloneMembers(src)

	src[0].Name = "changed"
	src = append(src, Member{ID: 2, Name: "B"})

	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Name)
}

func TestCloneMembers_EmptyIsNonNil(t *testing.T) {
	out := CloneMembers(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMemberUpdate_Apply(t *testing.T) {
	name := "Jane"
	rank := 2
	got := MemberUpdate{Name: &name, Rank: &rank}.Apply(Member{ID: 7, Name: "Joe", Score: 15, Rank: 3})

	assert.Equal(t, Member{ID: 7, Name: "Jane", Score: 15, Rank: 2}, got)
}

func TestDraftSession_CloneAndStatus(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	end := want
	s := DraftSession{ID: 1, EndTime: &end, Members: []Member{{ID: 1, Name: "A"}}}
	c := s.Clone()

	*s.EndTime = want.Add(time.Hour)
	s.Members[0].Name = "B"

	assert.Equal(t, want, *c.EndTime)
	assert.Equal(t, "A", c.Members[0].Name)
	assert.Equal(t, DraftStatusCompleted, c.Status())
	assert.Equal(t, DraftStatusActive, DraftSession{IsActive: true}.Status())
}

func TestDraftSession_JSONDistinguishesEmptySnapshot(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	active, err := json.Marshal(DraftSession{ID: 1, StartTime: start, IsActive: true})
	require.NoError(t, err)
	assert.Contains(t, string(active), `"members":null`)

	finalized, err := json.Marshal(DraftSession{ID: 1, StartTime: start, EndTime: &end, Members: CloneMembers(nil)})
	require.NoError(t, err)
	assert.Contains(t, string(finalized), `"members":[]`)
}
