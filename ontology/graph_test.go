package ontology

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "go.obo", basicOBO)

	g, err := Load(path)
	require.NoError(t, err)

	stats := g.Stats()
	assert.Equal(t, 3, stats.Terms)
	assert.Equal(t, 1, stats.AltIDs)
	assert.Zero(t, stats.Obsolete)
}

func TestLoadMissingFile(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.obo"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingFile)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(dir)
		require.Error(t, err)

		var missing *MissingFileError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, dir, missing.Path)
	})
}

func TestLookup(t *testing.T) {
	g := loadString(t, basicOBO)

	t.Run("primary id", func(t *testing.T) {
		term, err := g.Lookup("GO:0000001")
		require.NoError(t, err)
		assert.Equal(t, "child function", term.Name)
	})

	t.Run("alternate id resolves to the same term", func(t *testing.T) {
		for _, term := range g.Terms() {
			for _, alt := range term.AltIDs {
				byAlt, err := g.Lookup(alt)
				require.NoError(t, err)
				assert.Same(t, term, byAlt)
			}
		}
		id, ok := g.Resolve("GO:1000001")
		assert.True(t, ok)
		assert.Equal(t, "GO:0000001", id)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := g.Lookup("GO:9999999")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownTerm)

		var unknown *UnknownTermError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "GO:9999999", unknown.ID)
	})
}

func TestPrimaryIDWinsOverAlternate(t *testing.T) {
	doc := "[Term]\nid: GO:1\nalt_id: GO:2\n\n[Term]\nid: GO:2\nname: real\n"
	g := loadString(t, doc)

	term, err := g.Lookup("GO:2")
	require.NoError(t, err)
	assert.Equal(t, "real", term.Name)
}

func TestDuplicateIDKeepsLaterStanza(t *testing.T) {
	doc := "[Term]\nid: GO:1\nname: first\n\n[Term]\nid: GO:1\nname: second\n"
	g := loadString(t, doc)

	assert.Equal(t, 1, g.Len())
	term, err := g.Lookup("GO:1")
	require.NoError(t, err)
	assert.Equal(t, "second", term.Name)
}

func TestTermsKeepsFileOrder(t *testing.T) {
	g := loadString(t, basicOBO)

	var ids []string
	for _, term := range g.Terms() {
		ids = append(ids, term.ID)
	}
	assert.Equal(t, []string{"GO:0000001", "GO:0000002", "GO:0000003"}, ids)
}

func TestHasPartOf(t *testing.T) {
	doc := basicOBO + `
[Term]
id: GO:0000004
namespace: cellular_component
relationship: has_part GO:0000001
relationship: has_part GO:1000001 ! same part through its alternate id
relationship: has_part GO:0000404 ! not in this file
`
	g := loadString(t, doc)

	assert.Equal(t, []string{"GO:0000003", "GO:0000004"}, g.HasPartOf("GO:0000001"))
	assert.Equal(t, []string{"GO:0000003", "GO:0000004"}, g.HasPartOf("GO:1000001"))
	assert.Empty(t, g.HasPartOf("GO:0000002"))
	assert.Empty(t, g.HasPartOf("GO:0000404"))
}

func TestCheckReferences(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		assert.NoError(t, loadString(t, basicOBO).CheckReferences())
	})

	t.Run("dangling", func(t *testing.T) {
		doc := "[Term]\nid: GO:1\nis_a: GO:8\nrelationship: part_of GO:9\nintersection_of: part_of GO:9\n"
		err := loadString(t, doc).CheckReferences()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownTerm)
		assert.Contains(t, err.Error(), "GO:8")
		assert.Contains(t, err.Error(), "GO:9")
		assert.Equal(t, 1, strings.Count(err.Error(), "GO:9"))
	})
}

func TestConcurrentQueries(t *testing.T) {
	g := loadString(t, basicOBO)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []string{"GO:0000003"}, g.HasPartOf("GO:0000001"))
			ok, err := g.IsAncestor("GO:0000001", "GO:0000003", true)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
