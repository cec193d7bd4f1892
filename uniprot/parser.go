// Package uniprot extracts the fields of UniProt XML entries needed to
// annotate proteins with GO terms.
package uniprot

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const nsUniProt = "http://uniprot.org/uniprot"

// GODatabase is the dbReference type carrying GO ids.
const GODatabase = "GO"

// Entry is one UniProt record.
type Entry struct {
	Accession           string
	SecondaryAccessions []string
	Name                string // entry name, e.g. AATM_RABIT
	ProteinName         string // recommended full name
	Gene                Gene
	Existence           string
	References          map[string][]DBReference // keyed by database
}

// Gene holds the gene names of an entry by type.
type Gene struct {
	First        string
	Primary      string
	Synonyms     []string
	OrderedLocus []string
	ORF          []string
}

// Name returns the primary gene name, or the first name seen.
func (g Gene) Name() string {
	if g.Primary != "" {
		return g.Primary
	}
	return g.First
}

// DBReference is a cross reference to another database.
type DBReference struct {
	Type       string
	ID         string
	Properties map[string]string
}

// HasAccession reports whether acc is the primary or a secondary accession.
func (e *Entry) HasAccession(acc string) bool {
	if e.Accession == acc {
		return true
	}
	for _, s := range e.SecondaryAccessions {
		if s == acc {
			return true
		}
	}
	return false
}

// GOIDs returns the GO ids referenced by the entry in document order.
func (e *Entry) GOIDs() []string {
	refs := e.References[GODatabase]
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// ParseFile reads every entry from a UniProt XML file.
func ParseFile(path string) ([]*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("protein file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("protein file: %s is not a regular file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("protein file: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads every entry from a UniProt XML document.
func Parse(r io.Reader) ([]*Entry, error) {
	decoder := xml.NewDecoder(r)
	var entries []*Entry

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case matchElement(se, "entry"):
			entry, err := parseEntry(decoder)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		case matchElement(se, "uniprot"):
			// Container element, descend into it.
		default:
			if err := decoder.Skip(); err != nil {
				return nil, err
			}
		}
	}

	return entries, nil
}

func matchElement(se xml.StartElement, local string) bool {
	return matchName(se.Name, local)
}

func matchName(name xml.Name, local string) bool {
	return (name.Space == nsUniProt || name.Space == "") && name.Local == local
}

func getAttr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func parseEntry(decoder *xml.Decoder) (*Entry, error) {
	e := &Entry{References: make(map[string][]DBReference, 8)}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, "accession"):
				acc := readCharData(decoder)
				if e.Accession == "" {
					e.Accession = acc
				} else {
					e.SecondaryAccessions = append(e.SecondaryAccessions, acc)
				}
			case matchElement(el, "name"):
				name := readCharData(decoder)
				if e.Name == "" {
					e.Name = name
				}
			case matchElement(el, "protein"):
				e.ProteinName = parseProteinName(decoder)
			case matchElement(el, "gene"):
				parseGene(decoder, &e.Gene)
			case matchElement(el, "dbReference"):
				e.addReference(parseDBReference(decoder, el))
			case matchElement(el, "proteinExistence"):
				e.Existence = getAttr(el, "type")
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
			default:
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if e.Accession == "" {
				return nil, fmt.Errorf("entry without accession at offset %d", decoder.InputOffset())
			}
			return e, nil
		}
	}
}

// addReference appends ref, merging properties into an earlier reference
// with the same database and id.
func (e *Entry) addReference(ref DBReference) {
	refs := e.References[ref.Type]
	for i := range refs {
		if refs[i].ID != ref.ID {
			continue
		}
		if refs[i].Properties == nil {
			refs[i].Properties = make(map[string]string, len(ref.Properties))
		}
		for k, v := range ref.Properties {
			refs[i].Properties[k] = v
		}
		return
	}
	e.References[ref.Type] = append(refs, ref)
}

// parseProteinName returns recommendedName/fullName, falling back to the
// first fullName of any kind.
func parseProteinName(decoder *xml.Decoder) string {
	var recommended, first string
	inRecommended := false
	depth := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			return recommended
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case matchElement(el, "recommendedName"):
				inRecommended = true
			case matchElement(el, "fullName"):
				name := readCharData(decoder)
				depth--
				if inRecommended && recommended == "" {
					recommended = name
				}
				if first == "" {
					first = name
				}
			}
		case xml.EndElement:
			depth--
			if matchName(el.Name, "recommendedName") {
				inRecommended = false
			}
			if depth < 0 {
				if recommended != "" {
					return recommended
				}
				return first
			}
		}
	}
}

func parseGene(decoder *xml.Decoder, g *Gene) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if !matchElement(el, "name") {
				_ = decoder.Skip()
				continue
			}
			kind := getAttr(el, "type")
			name := readCharData(decoder)
			if g.First == "" {
				g.First = name
			}
			switch kind {
			case "primary":
				if g.Primary == "" {
					g.Primary = name
				}
			case "synonym":
				g.Synonyms = append(g.Synonyms, name)
			case "ordered locus":
				g.OrderedLocus = append(g.OrderedLocus, name)
			case "ORF":
				g.ORF = append(g.ORF, name)
			}
		case xml.EndElement:
			return
		}
	}
}

// parseDBReference parses:
//
//	<dbReference type="GO" id="GO:0005739">
//	  <property type="term" value="C:mitochondrion"/>
//	</dbReference>
func parseDBReference(decoder *xml.Decoder, se xml.StartElement) DBReference {
	ref := DBReference{
		Type: getAttr(se, "type"),
		ID:   getAttr(se, "id"),
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			return ref
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if matchElement(el, "property") {
				if ref.Properties == nil {
					ref.Properties = make(map[string]string, 4)
				}
				ref.Properties[getAttr(el, "type")] = getAttr(el, "value")
			}
			_ = decoder.Skip()
		case xml.EndElement:
			return ref
		}
	}
}

func readCharData(decoder *xml.Decoder) string {
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return strings.TrimSpace(sb.String())
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			sb.WriteString(readCharData(decoder))
		case xml.EndElement:
			return strings.TrimSpace(sb.String())
		}
	}
}
