package oauth2

import (
	"slices"
	"strings"
)

// ScopeSet is a sorted set of scope ids. The zero value is an empty set.
type ScopeSet []ScopeID

// NewScopeSet builds a set from ids, dropping blanks and duplicates.
func NewScopeSet(ids ...ScopeID) ScopeSet {
	set := make(ScopeSet, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(string(id)) == "" {
			continue
		}
		set = append(set, id)
	}
	slices.Sort(set)
	return slices.Compact(set)
}

// ParseScope splits a space separated scope parameter ("openid api.read") into a set.
func ParseScope(scope string) ScopeSet {
	fields := strings.Fields(scope)
	ids := make([]ScopeID, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, ScopeID(f))
	}
	return NewScopeSet(ids...)
}

// ScopeSetFromStrings converts raw strings into a set.
func ScopeSetFromStrings(scopes []string) ScopeSet {
	ids := make([]ScopeID, 0, len(scopes))
	for _, s := range scopes {
		ids = append(ids, ScopeID(s))
	}
	return NewScopeSet(ids...)
}

func (s ScopeSet) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether id is a member of the set.
func (s ScopeSet) Contains(id ScopeID) bool {
	return slices.Contains(s, id)
}

// ContainsAll reports whether every member of other is also in s.
// An empty other is always contained.
func (s ScopeSet) ContainsAll(other ScopeSet) bool {
	for _, id := range other {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// Strings returns the members as plain strings.
func (s ScopeSet) Strings() []string {
	out := make([]string, len(s))
	for i, id := range s {
		out[i] = string(id)
	}
	return out
}

// String joins the scopes with a single space, the wire format of the scope parameter.
func (s ScopeSet) String() string {
	return strings.Join(s.Strings(), " ")
}

// Clone returns an independent copy of the set.
func (s ScopeSet) Clone() ScopeSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
