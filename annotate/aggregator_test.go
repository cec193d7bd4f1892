package annotate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeadmin/goslim/ontology"
	"github.com/nodeadmin/goslim/report"
	"github.com/nodeadmin/goslim/uniprot"
)

const fixtureOBO = `format-version: 1.2

[Term]
id: GO:0008150
name: biological_process
namespace: biological_process
subset: goslim_generic

[Term]
id: GO:0003674
name: molecular_function
namespace: molecular_function
subset: goslim_generic

[Term]
id: GO:0005575
name: cellular_component
namespace: cellular_component
subset: goslim_generic

[Term]
id: GO:0003824
name: catalytic activity
namespace: molecular_function
is_a: GO:0003674 ! molecular_function
subset: goslim_generic

[Term]
id: GO:0008483
name: transaminase activity
namespace: molecular_function
is_a: GO:0003824 ! catalytic activity

[Term]
id: GO:0005215
name: transporter activity
namespace: molecular_function
is_a: GO:0003674 ! molecular_function
subset: goslim_generic

[Term]
id: GO:0005739
name: mitochondrion
namespace: cellular_component
is_a: GO:0005575 ! cellular_component
subset: goslim_generic

[Term]
id: GO:0005759
name: mitochondrial matrix
namespace: cellular_component
relationship: part_of GO:0005739 ! mitochondrion

[Term]
id: GO:0032991
name: protein-containing complex
namespace: cellular_component
is_a: GO:0005575 ! cellular_component
relationship: has_part GO:0005759 ! mitochondrial matrix
subset: goslim_generic

[Term]
id: GO:0006520
name: amino acid metabolic process
namespace: biological_process
is_a: GO:0008150 ! biological_process
subset: goslim_generic

[Term]
id: GO:0000999
name: misfiled
namespace: external
`

var fixtureRecords = []Record{
	{Accession: "P1", Name: "AATM_RAT", GeneName: "Got2", GOIDs: []string{"GO:0008483", "GO:0005759", "GO:0006520", "GO:0003824"}},
	{Accession: "P2", Name: "TRAN_RAT", GeneName: "Tr1", GOIDs: []string{"GO:0005215"}},
	{Accession: "P3", Name: "NONE_RAT", GeneName: "Nn"},
}

func loadFixture(t *testing.T) *ontology.Graph {
	t.Helper()
	g, err := ontology.LoadReader(strings.NewReader(fixtureOBO))
	require.NoError(t, err)
	return g
}

func categoryIDs(c *Category) map[string][]string {
	out := make(map[string][]string, len(c.Terms))
	for _, term := range c.Terms {
		for _, rec := range term.Records {
			out[term.ID] = append(out[term.ID], rec.Accession)
		}
	}
	return out
}

func TestParseNamespaces(t *testing.T) {
	tests := []struct {
		sel     string
		want    []ontology.Namespace
		wantErr bool
	}{
		{"A", ontology.Namespaces, false},
		{"b", []ontology.Namespace{ontology.BiologicalProcess}, false},
		{"M", []ontology.Namespace{ontology.MolecularFunction}, false},
		{"C", []ontology.Namespace{ontology.CellularComponent}, false},
		{"none", nil, false},
		{"X", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			got, err := ParseNamespaces(tt.sel)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummary(t *testing.T) {
	a := New(loadFixture(t))

	tbl, err := a.Summary(fixtureRecords)
	require.NoError(t, err)

	require.Equal(t, 4, tbl.Len(), "P1 spans two rows for its two molecular functions")
	assert.Equal(t, []any{"P1", "P1", "AATM_RAT", "Got2", "transaminase activity", "amino acid metabolic process", "mitochondrial matrix"}, tbl.Rows[0])
	assert.Equal(t, []any{nil, nil, nil, nil, "catalytic activity", nil, nil}, tbl.Rows[1])
	assert.Equal(t, []any{"P2", "P2", "TRAN_RAT", "Tr1", "transporter activity", nil, nil}, tbl.Rows[2])
	assert.Equal(t, []any{"P3", "P3", "NONE_RAT", "Nn", nil, nil, nil}, tbl.Rows[3])
}

func TestSummarySkipsUnknownNamespace(t *testing.T) {
	var buf bytes.Buffer
	a := New(loadFixture(t), WithLogger(zerolog.New(&buf)))

	tbl, err := a.Summary([]Record{{Accession: "P9", GOIDs: []string{"GO:0000999"}}})
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.Len())
	assert.Contains(t, buf.String(), "Unknown namespace")
}

func TestSummaryUnknownTerm(t *testing.T) {
	a := New(loadFixture(t))

	_, err := a.Summary([]Record{{Accession: "P9", GOIDs: []string{"GO:9999999"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ontology.ErrUnknownTerm)
	assert.Contains(t, err.Error(), "P9")
}

func TestCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("molecular function", func(t *testing.T) {
		c, err := New(loadFixture(t)).Category(ctx, ontology.MolecularFunction, fixtureRecords)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"GO:0003824": {"P1"},
			"GO:0005215": {"P2"},
		}, categoryIDs(c))
	})

	t.Run("biological process drops the root", func(t *testing.T) {
		c, err := New(loadFixture(t)).Category(ctx, ontology.BiologicalProcess, fixtureRecords)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"GO:0006520": {"P1"}}, categoryIDs(c))
	})

	t.Run("cellular component strict", func(t *testing.T) {
		c, err := New(loadFixture(t)).Category(ctx, ontology.CellularComponent, fixtureRecords)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"GO:0005739": {"P1"}}, categoryIDs(c))
	})

	t.Run("cellular component relaxed", func(t *testing.T) {
		c, err := New(loadFixture(t), WithRelaxed(true)).Category(ctx, ontology.CellularComponent, fixtureRecords)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"GO:0005739": {"P1"},
			"GO:0032991": {"P1"},
		}, categoryIDs(c))
	})

	t.Run("other slim tag", func(t *testing.T) {
		c, err := New(loadFixture(t), WithSlimTag("goslim_pir")).Category(ctx, ontology.MolecularFunction, fixtureRecords)
		require.NoError(t, err)
		assert.Empty(t, c.Terms)
	})

	t.Run("unknown term", func(t *testing.T) {
		_, err := New(loadFixture(t)).Category(ctx, ontology.MolecularFunction, []Record{{Accession: "P9", GOIDs: []string{"GO:9999999"}}})
		assert.ErrorIs(t, err, ontology.ErrUnknownTerm)
	})
}

func TestCategoryTable(t *testing.T) {
	c := &Category{
		Namespace: ontology.MolecularFunction,
		Terms: []CategoryTerm{
			{ID: "GO:0003824", Name: "catalytic activity", Records: fixtureRecords[:2]},
			{ID: "GO:0005215", Name: "transporter activity", Records: fixtureRecords[1:2]},
		},
	}

	tbl := c.Table()
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []any{"GO:0003824", "catalytic activity", 2, "P1", "AATM_RAT", "Got2"}, tbl.Rows[0])
	assert.Equal(t, []any{nil, nil, nil, "P2", "TRAN_RAT", "Tr1"}, tbl.Rows[1])
	assert.Equal(t, []any{"GO:0005215", "transporter activity", 1, "P2", "TRAN_RAT", "Tr1"}, tbl.Rows[2])
}

func TestCategories(t *testing.T) {
	a := New(loadFixture(t), WithWorkers(1))

	t.Run("keeps namespace order", func(t *testing.T) {
		cats, err := a.Categories(context.Background(), ontology.Namespaces, fixtureRecords)
		require.NoError(t, err)
		require.Len(t, cats, 3)
		for i, ns := range ontology.Namespaces {
			assert.Equal(t, ns, cats[i].Namespace)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.Categories(ctx, ontology.Namespaces, fixtureRecords)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildAndWriteDir(t *testing.T) {
	a := New(loadFixture(t))
	reports, err := a.Build(context.Background(), []ontology.Namespace{ontology.MolecularFunction}, fixtureRecords)
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := reports.WriteDir(dir, report.TSV)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "SummaryGO.tsv"),
		filepath.Join(dir, "Summary_molecular_function.tsv"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "GO Accession\tGO Name\tProtein Count"))
	assert.Contains(t, string(data), "GO:0003824\tcatalytic activity\t1\tP1")
}

func TestFromUniProt(t *testing.T) {
	entries := []*uniprot.Entry{{
		Accession: "P00508",
		Name:      "AATM_RAT",
		Gene:      uniprot.Gene{First: "Fabp", Primary: "Got2"},
		References: map[string][]uniprot.DBReference{
			uniprot.GODatabase: {{Type: "GO", ID: "GO:0005739"}},
			"PDB":              {{Type: "PDB", ID: "1AKA"}},
		},
	}}

	assert.Equal(t, []Record{{
		Accession: "P00508",
		Name:      "AATM_RAT",
		GeneName:  "Got2",
		GOIDs:     []string{"GO:0005739"},
	}}, FromUniProt(entries))
}
