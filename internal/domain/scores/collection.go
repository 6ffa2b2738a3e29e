// Package scores owns the score-set collection and its identity rules:
// at most one live score set per (contestant, round, judge) key, and
// resubmission replaces rather than accumulates.
package scores

import (
	"github.com/okian/encore/internal/domain/model"
)

// Collection is an ordered set of score sets keyed by identity. It is a pure
// in-memory structure; the owning room service serializes access.
type Collection struct {
	sets []model.ScoreSet
}

// FromSlice builds a collection from stored score sets, collapsing any
// duplicate identity keys onto the last occurrence. Stored data written by
// this service never contains duplicates, but last-write-wins reads of
// foreign or stale payloads may.
func FromSlice(sets []model.ScoreSet) *Collection {
	c := &Collection{}
	for _, s := range sets {
		c.Upsert(s)
	}
	return c
}

// Upsert removes any existing score set with the same identity key and
// appends the new one. Returns true when an existing set was replaced.
func (c *Collection) Upsert(set model.ScoreSet) bool {
	key := set.Key()
	for i, existing := range c.sets {
		if existing.Key() == key {
			c.sets = append(c.sets[:i], c.sets[i+1:]...)
			c.sets = append(c.sets, set)
			return true
		}
	}
	c.sets = append(c.sets, set)
	return false
}

// Filter selects score sets by optional identity components. A nil field
// matches everything.
type Filter struct {
	ContestantID *string
	RoundID      *int
	Judge        *string
}

func (f Filter) matches(s model.ScoreSet) bool {
	if f.ContestantID != nil && s.ContestantID != *f.ContestantID {
		return false
	}
	if f.RoundID != nil && s.RoundID != *f.RoundID {
		return false
	}
	if f.Judge != nil && s.Judge != *f.Judge {
		return false
	}
	return true
}

// Query returns all score sets matching the filter, in insertion order.
func (c *Collection) Query(f Filter) []model.ScoreSet {
	var out []model.ScoreSet
	for _, s := range c.sets {
		if f.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the score set for an exact identity key, if present.
func (c *Collection) Get(key model.Key) (model.ScoreSet, bool) {
	for _, s := range c.sets {
		if s.Key() == key {
			return s, true
		}
	}
	return model.ScoreSet{}, false
}

// Judges returns the distinct judge names present in the collection, in
// first-seen order.
func (c *Collection) Judges() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range c.sets {
		if !seen[s.Judge] {
			seen[s.Judge] = true
			out = append(out, s.Judge)
		}
	}
	return out
}

// Len returns the number of live score sets.
func (c *Collection) Len() int { return len(c.sets) }

// Reset clears the collection.
func (c *Collection) Reset() { c.sets = nil }

// Snapshot returns a copy of the live score sets in insertion order.
func (c *Collection) Snapshot() []model.ScoreSet {
	out := make([]model.ScoreSet, len(c.sets))
	copy(out, c.sets)
	return out
}
