package announcement

import "sort"

// ReadSet is the set of announcement IDs a visitor has acknowledged.
// INVARIANT: IDs are only ever added, never removed.
type ReadSet map[string]struct{}

// NewReadSet builds a set from a list of IDs. Duplicates collapse.
func NewReadSet(ids []string) ReadSet {
	s := make(ReadSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id has been read.
func (s ReadSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set containing s plus ids.
// POST: s is not mutated; every element of s is in the result
func (s ReadSet) Union(ids []string) ReadSet {
	out := make(ReadSet, len(s)+len(ids))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the IDs sorted, for stable persistence.
func (s ReadSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnreadCount counts active announcements whose ID is not in read.
// PRE: active has already been filtered by the date window
// POST: 0 <= result <= len(active)
func UnreadCount(active []Announcement, read ReadSet) int {
	n := 0
	for _, a := range active {
		if !read.Has(a.ID) {
			n++
		}
	}
	return n
}
