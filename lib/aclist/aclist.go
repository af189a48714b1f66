// Package aclist implements the named aircraft-identifier lists referenced
// by the "aircraft_list"/"exclude_aircraft_list" rule conditions.
package aclist

import "strings"

// Set holds the aircraft_lists block of the rule-set config: named sets of
// literal identifiers. Identifiers are matched exactly, after the same
// trim/uppercase normalization applied to report identifiers.
type Set struct {
	lists map[string]map[string]struct{}
}

// NewSet builds a Set from raw name -> []identifier data, normalizing every
// identifier the same way report identifiers are normalized.
func NewSet(raw map[string][]string) *Set {
	s := &Set{lists: make(map[string]map[string]struct{}, len(raw))}
	for name, idents := range raw {
		members := make(map[string]struct{}, len(idents))
		for _, id := range idents {
			members[Normalize(id)] = struct{}{}
		}
		s.lists[name] = members
	}
	return s
}

// Normalize applies the canonical identifier form used throughout the
// engine: trimmed and uppercased.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Has reports whether identifier is a member of the named list. An unknown
// list name is a configuration error the caller should have already
// rejected at load time; Has returns false for it defensively rather than
// panicking.
func (s *Set) Has(listName, identifier string) bool {
	members, ok := s.lists[listName]
	if !ok {
		return false
	}
	_, found := members[Normalize(identifier)]
	return found
}

// Exists reports whether listName is a declared list, used by rule-set
// validation to fail fast on a typo'd list reference.
func (s *Set) Exists(listName string) bool {
	_, ok := s.lists[listName]
	return ok
}

// HasAnySubstr reports whether identifier contains any of substrs (e.g. for
// "exclude_aircraft_substrs").
func HasAnySubstr(identifier string, substrs []string) bool {
	id := Normalize(identifier)
	for _, s := range substrs {
		if strings.Contains(id, strings.ToUpper(s)) {
			return true
		}
	}
	return false
}
