package models

// Member is one entry in the draft pool.
type Member struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

// MemberUpdate carries the fields to merge into an existing member. Nil fields are left untouched.
type MemberUpdate struct {
	Name  *string `json:"name,omitempty"`
	Score *int    `json:"score,omitempty"`
	Rank  *int    `json:"rank,omitempty"`
}

// Apply merges the non-nil fields of u into m and returns the result.
func (u MemberUpdate) Apply(m Member) Member {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Score != nil {
		m.Score = *u.Score
	}
	if u.Rank != nil {
		m.Rank = *u.Rank
	}
	return m
}

// CloneMembers copies members into a fresh slice. The result never aliases the input and is
// non-nil even for an empty roster.
func CloneMembers(members []Member) []Member {
	out := make([]Member, len(members))
	copy(out, members)
	return out
}
