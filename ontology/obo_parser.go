package ontology

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	initialTermCapacity = 50000   // go.obo has ~48k terms
	scannerBufferSize   = 1 << 20 // 1 MB
	termStanza          = "[Term]"
)

// ignoredKeys are tags we read past without recording anything.
var ignoredKeys = map[string]struct{}{
	"synonym":        {},
	"xref":           {},
	"created_by":     {},
	"creation_date":  {},
	"property_value": {},
	"disjoint_from":  {},
}

// internPool avoids duplicate string allocations for repeated values.
type internPool struct {
	m map[string]string
}

func newInternPool() *internPool {
	return &internPool{m: make(map[string]string, 64)}
}

func (p *internPool) get(s string) string {
	if v, ok := p.m[s]; ok {
		return v
	}
	p.m[s] = s
	return s
}

// oboParser walks an OBO document and hands each [Term] stanza to a callback.
type oboParser struct {
	scanner *bufio.Scanner
	line    int
	pool    *internPool
	log     zerolog.Logger
	verbose bool
	stats   *LoadStats
}

func newOBOParser(r io.Reader, log zerolog.Logger, verbose bool, stats *LoadStats) *oboParser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)
	return &oboParser{
		scanner: scanner,
		pool:    newInternPool(),
		log:     log,
		verbose: verbose,
		stats:   stats,
	}
}

func (p *oboParser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.line++
	return strings.TrimRight(p.scanner.Text(), "\r"), true
}

// parse reads the header into hdr and calls visit for every term stanza in
// file order. Other stanza types are skipped.
func (p *oboParser) parse(hdr *Header, visit func(*Term) error) error {
	inHeader := true
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if line == termStanza {
			inHeader = false
			term, err := p.parseTerm(p.line)
			if err != nil {
				return err
			}
			if err := visit(term); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, "[") {
			inHeader = false
			continue
		}
		if inHeader && hdr != nil {
			parseHeaderLine(hdr, line)
		}
	}
	return p.scanner.Err()
}

func parseHeaderLine(hdr *Header, line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "format-version":
		hdr.FormatVersion = val
	case "data-version":
		hdr.DataVersion = val
	case "ontology":
		hdr.Ontology = val
	}
}

// parseTerm consumes lines up to and including the blank line that ends the
// stanza. start is the line number of the [Term] header.
func (p *oboParser) parseTerm(start int) (*Term, error) {
	t := &Term{}
	for {
		line, ok := p.next()
		if !ok || strings.TrimSpace(line) == "" {
			break
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			p.unrecognized(t, line)
			continue
		}
		val = strings.TrimSpace(val)

		switch key {
		case "id":
			t.ID = val
		case "name":
			t.Name = val
		case "namespace":
			t.Namespace = Namespace(p.pool.get(val))
		case "alt_id":
			if id := firstID(val); id != "" {
				t.AltIDs = append(t.AltIDs, id)
			}
		case "def":
			t.Definition = parseQuoted(val)
		case "comment":
			t.Comment = val
		case "is_a":
			if id := firstID(val); id != "" {
				t.addRelation(IsA, id)
			}
		case "relationship":
			if kind, id, ok := p.parseRelationship(val); ok {
				t.addRelation(kind, id)
			} else {
				p.unrecognized(t, line)
			}
		case "intersection_of":
			if part, ok := p.parseIntersectionOf(val); ok {
				t.IntersectionOf = append(t.IntersectionOf, part)
			}
		case "is_obsolete":
			if val == "true" {
				t.Obsolete = true
			}
		case "replaced_by":
			if id := firstID(val); id != "" {
				t.ReplacedBy = append(t.ReplacedBy, id)
			}
		case "consider":
			if id := firstID(val); id != "" {
				t.Consider = append(t.Consider, id)
			}
		case "subset":
			if tag := firstID(val); tag != "" {
				t.addSubset(p.pool.get(tag))
			}
		default:
			if _, skip := ignoredKeys[key]; !skip {
				p.unrecognized(t, line)
			}
		}
	}

	if t.ID == "" {
		return nil, &MalformedStanzaError{Line: start}
	}
	if !t.Namespace.Valid() {
		p.stats.NamespaceAnomalies++
		p.log.Warn().
			Str("term", t.ID).
			Str("namespace", string(t.Namespace)).
			Msg("Unexpected namespace")
	}
	return t, nil
}

func (p *oboParser) unrecognized(t *Term, line string) {
	p.stats.UnrecognizedKeys++
	if !p.verbose {
		return
	}
	p.log.Warn().
		Int("line", p.line).
		Str("term", t.ID).
		Str("annotation", line).
		Msg("Unknown annotation line")
}

// parseRelationship parses: "part_of GO:0005634 ! nucleus"
func (p *oboParser) parseRelationship(val string) (RelationKind, string, bool) {
	fields := strings.Fields(stripComment(val))
	if len(fields) < 2 {
		return "", "", false
	}
	return RelationKind(p.pool.get(fields[0])), fields[1], true
}

// parseIntersectionOf parses: "GO:0008150" (genus) or "part_of GO:0005634" (differentia).
func (p *oboParser) parseIntersectionOf(val string) (IntersectionPart, bool) {
	fields := strings.Fields(stripComment(val))
	switch len(fields) {
	case 0:
		return IntersectionPart{}, false
	case 1:
		return IntersectionPart{TargetID: fields[0]}, true
	default:
		return IntersectionPart{
			Relation: RelationKind(p.pool.get(fields[0])),
			TargetID: fields[1],
		}, true
	}
}

// stripComment drops a trailing "! comment" and any "{...}" qualifier block.
func stripComment(val string) string {
	val, _, _ = strings.Cut(val, "!")
	val, _, _ = strings.Cut(val, "{")
	return strings.TrimSpace(val)
}

// firstID returns the first token of an id-bearing value.
func firstID(val string) string {
	fields := strings.Fields(stripComment(val))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseQuoted extracts the text of the first double-quoted string, honouring
// backslash escapes. Unquoted input is returned unchanged.
func parseQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s[start+1:] {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			return b.String()
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
