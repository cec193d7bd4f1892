package ontology

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LoadStats summarizes what a load saw.
type LoadStats struct {
	Terms              int           `json:"terms"`
	AltIDs             int           `json:"alt_ids"`
	Obsolete           int           `json:"obsolete"`
	UnrecognizedKeys   int           `json:"unrecognized_keys"`
	NamespaceAnomalies int           `json:"namespace_anomalies"`
	Duration           time.Duration `json:"duration"`
}

// Graph is an in-memory GO term table with ancestry queries.
//
// A Graph is populated once by Load or LoadReader and optionally enriched by
// MergeSlim. After that it is read-only and every query method is safe for
// concurrent use.
type Graph struct {
	Header Header

	terms   []*Term
	symbols *symbolTable
	log     zerolog.Logger
	verbose bool
	stats   LoadStats

	partOfOnce sync.Once
	partOf     [][]termIndex // partOf[i] = terms declaring has_part -> i
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for load progress and parse diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Graph) { g.log = log }
}

// WithVerbose enables warnings for unrecognized stanza tags.
func WithVerbose(verbose bool) Option {
	return func(g *Graph) { g.verbose = verbose }
}

func newGraph(opts ...Option) *Graph {
	g := &Graph{
		terms:   make([]*Term, 0, initialTermCapacity),
		symbols: newSymbolTable(initialTermCapacity),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load reads a base ontology file. It fails with a MissingFileError when
// path does not name a regular file, and with a MalformedStanzaError when a
// [Term] stanza has no id.
func Load(path string, opts ...Option) (*Graph, error) {
	f, err := openRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := newGraph(opts...)
	g.log.Info().Str("path", path).Msg("Loading Gene Ontologies")
	if err := g.read(f); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	g.log.Info().
		Int("terms", g.stats.Terms).
		Int("alt_ids", g.stats.AltIDs).
		Dur("elapsed", g.stats.Duration).
		Msg("Finished loading Gene Ontologies")
	return g, nil
}

// LoadReader builds a graph from an OBO document.
func LoadReader(r io.Reader, opts ...Option) (*Graph, error) {
	g := newGraph(opts...)
	if err := g.read(r); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) read(r io.Reader) error {
	start := time.Now()
	p := newOBOParser(r, g.log, g.verbose, &g.stats)
	if err := p.parse(&g.Header, g.insert); err != nil {
		return err
	}
	g.stats.Terms = len(g.terms)
	g.stats.Duration = time.Since(start)
	return nil
}

func (g *Graph) insert(t *Term) error {
	idx, fresh := g.symbols.intern(t.ID)
	if fresh {
		g.terms = append(g.terms, t)
	} else {
		g.log.Warn().Str("term", t.ID).Msg("Duplicate term id, keeping the later stanza")
		if g.terms[idx].Obsolete {
			g.stats.Obsolete--
		}
		g.terms[idx] = t
	}
	for _, alt := range t.AltIDs {
		g.symbols.alias(alt, idx)
		g.stats.AltIDs++
	}
	if t.Obsolete {
		g.stats.Obsolete++
	}
	return nil
}

func openRegular(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &MissingFileError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &MissingFileError{Path: path}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingFileError{Path: path, Err: err}
	}
	return f, nil
}

// Lookup resolves id as a primary id, then as an alternate id.
func (g *Graph) Lookup(id string) (*Term, error) {
	idx, ok := g.symbols.resolve(id)
	if !ok {
		return nil, &UnknownTermError{ID: id}
	}
	return g.terms[idx], nil
}

// Resolve returns the primary id for a primary or alternate id.
func (g *Graph) Resolve(id string) (string, bool) {
	idx, ok := g.symbols.resolve(id)
	if !ok {
		return "", false
	}
	return g.symbols.name(idx), true
}

// Terms returns all terms in file order.
func (g *Graph) Terms() []*Term {
	return slices.Clone(g.terms)
}

// Len returns the number of distinct primary ids.
func (g *Graph) Len() int { return g.symbols.len() }

// Stats returns counters collected while loading.
func (g *Graph) Stats() LoadStats { return g.stats }

// HasPartOf returns the ids of terms that declare has_part pointing at id,
// in file order. Unknown ids yield an empty result.
func (g *Graph) HasPartOf(id string) []string {
	idx, ok := g.symbols.resolve(id)
	if !ok {
		return nil
	}
	wholes := g.wholes(idx)
	ids := make([]string, len(wholes))
	for i, w := range wholes {
		ids[i] = g.symbols.name(w)
	}
	return ids
}

// wholes returns the inverse has_part list for idx, building the full index
// on first use.
func (g *Graph) wholes(idx termIndex) []termIndex {
	g.partOfOnce.Do(g.buildPartOf)
	return g.partOf[idx]
}

func (g *Graph) buildPartOf() {
	g.partOf = make([][]termIndex, len(g.terms))
	for i, t := range g.terms {
		whole := termIndex(i)
		for _, target := range t.Parents(HasPart) {
			part, ok := g.symbols.resolve(target)
			if !ok {
				continue
			}
			if !slices.Contains(g.partOf[part], whole) {
				g.partOf[part] = append(g.partOf[part], whole)
			}
		}
	}
}

// CheckReferences resolves every relation and intersection target and
// returns the unresolvable ones joined into a single error.
func (g *Graph) CheckReferences() error {
	var errs []error
	seen := make(map[string]struct{})
	check := func(id string) {
		if _, ok := g.symbols.resolve(id); ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		errs = append(errs, &UnknownTermError{ID: id})
	}
	for _, t := range g.terms {
		for _, kind := range slices.Sorted(maps.Keys(t.Relations)) {
			for _, id := range t.Relations[kind] {
				check(id)
			}
		}
		for _, part := range t.IntersectionOf {
			check(part.TargetID)
		}
	}
	return errors.Join(errs...)
}
