// Package annotate summarizes protein records by GO namespace and by GO slim
// category.
package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nodeadmin/goslim/ontology"
	"github.com/nodeadmin/goslim/report"
	"github.com/nodeadmin/goslim/uniprot"
)

// Root terms of the three namespaces never appear as categories.
var rootTerms = map[string]struct{}{
	"GO:0008150": {}, // biological_process
	"GO:0003674": {}, // molecular_function
	"GO:0005575": {}, // cellular_component
}

// Ontology is the read-only graph view the aggregator needs.
type Ontology interface {
	Lookup(id string) (*ontology.Term, error)
	IsAncestor(termID, targetID string, relaxed bool) (bool, error)
	Terms() []*ontology.Term
}

// Record is a protein and the GO ids annotated on it.
type Record struct {
	Accession string
	Name      string
	GeneName  string
	GOIDs     []string
}

// FromUniProt converts parsed UniProt entries into records.
func FromUniProt(entries []*uniprot.Entry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Record{
			Accession: e.Accession,
			Name:      e.Name,
			GeneName:  e.Gene.Name(),
			GOIDs:     e.GOIDs(),
		})
	}
	return records
}

// ParseNamespaces maps a selector to namespaces: A (all), B (biological
// process), M (molecular function), C (cellular component) or none.
func ParseNamespaces(sel string) ([]ontology.Namespace, error) {
	switch strings.ToUpper(sel) {
	case "A":
		return ontology.Namespaces, nil
	case "B":
		return []ontology.Namespace{ontology.BiologicalProcess}, nil
	case "M":
		return []ontology.Namespace{ontology.MolecularFunction}, nil
	case "C":
		return []ontology.Namespace{ontology.CellularComponent}, nil
	case "NONE":
		return nil, nil
	}
	return nil, fmt.Errorf("invalid GO namespace filter %q (want A, B, M, C or none)", sel)
}

// Aggregator builds report tables from ancestry queries against a graph.
type Aggregator struct {
	graph   Ontology
	log     zerolog.Logger
	slimTag string
	relaxed bool
	workers int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for namespace anomalies and progress.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// WithSlimTag sets the subset tag that selects category terms.
func WithSlimTag(tag string) Option {
	return func(a *Aggregator) { a.slimTag = tag }
}

// WithRelaxed switches category membership to relaxed ancestry.
func WithRelaxed(relaxed bool) Option {
	return func(a *Aggregator) { a.relaxed = relaxed }
}

// WithWorkers bounds how many namespaces are aggregated at once.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// New returns an Aggregator over graph.
func New(graph Ontology, opts ...Option) *Aggregator {
	a := &Aggregator{
		graph:   graph,
		log:     zerolog.Nop(),
		slimTag: "goslim_generic",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary lists, per record, the names of its GO terms split by namespace.
// A record spans as many rows as its longest namespace column.
func (a *Aggregator) Summary(records []Record) (*report.Table, error) {
	t := report.NewTable("Info",
		"ID", "Accession", "Name", "Gene Name",
		"Molecular Function", "Biological Process", "Cellular Component")
	columns := map[ontology.Namespace]int{
		ontology.MolecularFunction: 4,
		ontology.BiologicalProcess: 5,
		ontology.CellularComponent: 6,
	}

	row := 0
	for _, rec := range records {
		t.Set(row, 0, rec.Accession)
		t.Set(row, 1, rec.Accession)
		t.Set(row, 2, rec.Name)
		t.Set(row, 3, rec.GeneName)

		counts := make(map[ontology.Namespace]int, len(columns))
		for _, id := range rec.GOIDs {
			term, err := a.graph.Lookup(id)
			if err != nil {
				return nil, fmt.Errorf("protein %s: %w", rec.Accession, err)
			}
			col, ok := columns[term.Namespace]
			if !ok {
				a.log.Warn().
					Str("protein", rec.Accession).
					Str("term", term.ID).
					Str("namespace", string(term.Namespace)).
					Msg("Unknown namespace")
				continue
			}
			t.Set(row+counts[term.Namespace], col, term.Name)
			counts[term.Namespace]++
		}

		span := 1
		for _, n := range counts {
			span = max(span, n)
		}
		row += span
	}
	return t, nil
}

// Category is the slim breakdown of one namespace.
type Category struct {
	Namespace ontology.Namespace
	Terms     []CategoryTerm
}

// CategoryTerm is a slim term and the records annotated at or below it.
type CategoryTerm struct {
	ID      string
	Name    string
	Records []Record
}

// Category counts, for every slim term of ns, the records with at least one
// GO id that has the slim term as an ancestor. Root terms and slim terms
// without records are dropped.
func (a *Aggregator) Category(ctx context.Context, ns ontology.Namespace, records []Record) (*Category, error) {
	var candidates []CategoryTerm
	for _, term := range a.graph.Terms() {
		if term.Namespace != ns || !term.HasSubset(a.slimTag) {
			continue
		}
		if _, root := rootTerms[term.ID]; root {
			continue
		}
		candidates = append(candidates, CategoryTerm{ID: term.ID, Name: term.Name})
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range candidates {
			found, err := a.annotatedUnder(rec, candidates[i].ID)
			if err != nil {
				return nil, err
			}
			if found {
				candidates[i].Records = append(candidates[i].Records, rec)
			}
		}
	}

	c := &Category{Namespace: ns}
	for _, cand := range candidates {
		if len(cand.Records) > 0 {
			c.Terms = append(c.Terms, cand)
		}
	}
	a.log.Debug().
		Str("namespace", string(ns)).
		Int("candidates", len(candidates)).
		Int("categories", len(c.Terms)).
		Msg("Aggregated namespace")
	return c, nil
}

func (a *Aggregator) annotatedUnder(rec Record, slimID string) (bool, error) {
	for _, id := range rec.GOIDs {
		ok, err := a.graph.IsAncestor(id, slimID, a.relaxed)
		if err != nil {
			return false, fmt.Errorf("protein %s: %w", rec.Accession, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Categories aggregates each namespace concurrently and returns the results
// in the order of namespaces.
func (a *Aggregator) Categories(ctx context.Context, namespaces []ontology.Namespace, records []Record) ([]*Category, error) {
	out := make([]*Category, len(namespaces))
	g, ctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}
	for i, ns := range namespaces {
		g.Go(func() error {
			c, err := a.Category(ctx, ns, records)
			if err != nil {
				return fmt.Errorf("%s: %w", ns, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Table lays the category out with one row per record under each slim term.
func (c *Category) Table() *report.Table {
	t := report.NewTable("Info",
		"GO Accession", "GO Name", "Protein Count",
		"Protein Accession", "Protein Entry Name", "Gene Name")

	row := 0
	for _, term := range c.Terms {
		t.Set(row, 0, term.ID)
		t.Set(row, 1, term.Name)
		t.Set(row, 2, len(term.Records))
		for i, rec := range term.Records {
			t.Set(row+i, 3, rec.Accession)
			t.Set(row+i, 4, rec.Name)
			t.Set(row+i, 5, rec.GeneName)
		}
		row += max(1, len(term.Records))
	}
	return t
}
