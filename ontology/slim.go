package ontology

import (
	"fmt"
	"io"
)

// MergeSlim reads a GO slim file and copies its subset tags onto the
// matching base terms. When limitTo is non-empty only that tag is copied.
//
// Every slim stanza must resolve against the graph, otherwise a
// SlimResolutionError is returned. MergeSlim must finish before the graph
// is queried concurrently.
func (g *Graph) MergeSlim(path, limitTo string) error {
	f, err := openRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	g.log.Info().Str("path", path).Str("limit_to", limitTo).Msg("Loading Gene Ontology Slim")
	added, err := g.mergeSlim(f, path, limitTo)
	if err != nil {
		return fmt.Errorf("merge slim %s: %w", path, err)
	}
	g.log.Info().Str("path", path).Int("tags_added", added).Msg("Finished loading Gene Ontology Slim")
	return nil
}

// MergeSlimReader is MergeSlim for an already open document; name is used
// in errors only.
func (g *Graph) MergeSlimReader(r io.Reader, name, limitTo string) error {
	_, err := g.mergeSlim(r, name, limitTo)
	return err
}

func (g *Graph) mergeSlim(r io.Reader, name, limitTo string) (int, error) {
	var (
		stats LoadStats
		added int
	)
	p := newOBOParser(r, g.log, g.verbose, &stats)
	err := p.parse(nil, func(slim *Term) error {
		idx, ok := g.symbols.resolve(slim.ID)
		if !ok {
			return &SlimResolutionError{Path: name, ID: slim.ID}
		}
		base := g.terms[idx]
		for _, tag := range slim.Subsets {
			if limitTo != "" && tag != limitTo {
				continue
			}
			if base.addSubset(tag) {
				added++
			}
		}
		return nil
	})
	return added, err
}
