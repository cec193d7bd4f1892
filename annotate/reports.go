package annotate

import (
	"context"
	"path/filepath"

	"github.com/nodeadmin/goslim/ontology"
	"github.com/nodeadmin/goslim/report"
)

// SummaryName is the base name of the per-protein summary report.
const SummaryName = "SummaryGO"

// Reports is everything produced for one data directory.
type Reports struct {
	Summary    *report.Table
	Categories []*Category
}

// Build computes the summary and the category tables for namespaces.
func (a *Aggregator) Build(ctx context.Context, namespaces []ontology.Namespace, records []Record) (*Reports, error) {
	summary, err := a.Summary(records)
	if err != nil {
		return nil, err
	}
	categories, err := a.Categories(ctx, namespaces, records)
	if err != nil {
		return nil, err
	}
	return &Reports{Summary: summary, Categories: categories}, nil
}

// WriteDir writes SummaryGO.<ext> and one Summary_<namespace>.<ext> per
// category into dir and returns the written paths.
func (r *Reports) WriteDir(dir string, format report.Format) ([]string, error) {
	paths := make([]string, 0, 1+len(r.Categories))

	path := filepath.Join(dir, SummaryName+format.Ext())
	if err := report.WriteFile(path, format, r.Summary); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	for _, c := range r.Categories {
		path := filepath.Join(dir, "Summary_"+string(c.Namespace)+format.Ext())
		if err := report.WriteFile(path, format, c.Table()); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
