package ontology

import "fmt"

// IsAncestor reports whether targetID is termID itself or is reachable from
// it over ancestry edges.
//
// Strict queries follow is_a, part_of and occurs_in. Relaxed queries also
// step from a term to every term that declares it through has_part, so a
// relaxed result is never false where the strict one is true.
//
// termID must resolve or an UnknownTermError is returned. An unknown
// targetID is simply never reached. Every term is expanded at most once per
// query, which keeps the walk linear and finite on cyclic input.
func (g *Graph) IsAncestor(termID, targetID string, relaxed bool) (bool, error) {
	start, ok := g.symbols.resolve(termID)
	if !ok {
		return false, &UnknownTermError{ID: termID}
	}
	s := &ancestrySearch{
		g:       g,
		relaxed: relaxed,
		visited: make(map[termIndex]struct{}, 16),
	}
	s.target, s.known = g.symbols.resolve(targetID)
	return s.visit(start)
}

type ancestrySearch struct {
	g       *Graph
	target  termIndex
	known   bool
	relaxed bool
	visited map[termIndex]struct{}
}

func (s *ancestrySearch) visit(idx termIndex) (bool, error) {
	if s.known && idx == s.target {
		return true, nil
	}
	if _, seen := s.visited[idx]; seen {
		return false, nil
	}
	s.visited[idx] = struct{}{}

	t := s.g.terms[idx]
	for _, kind := range ancestryKinds {
		for _, id := range t.Parents(kind) {
			next, ok := s.g.symbols.resolve(id)
			if !ok {
				return false, fmt.Errorf("%s %s of %s: %w", kind, id, t.ID, &UnknownTermError{ID: id})
			}
			if found, err := s.visit(next); found || err != nil {
				return found, err
			}
		}
	}

	if !s.relaxed {
		return false, nil
	}
	for _, whole := range s.g.wholes(idx) {
		if found, err := s.visit(whole); found || err != nil {
			return found, err
		}
	}
	return false, nil
}
