// Package vcfio provides the thin I/O collaborators around the record
// model: a streaming line reader, the header-line registry, and the
// genotype decode capability the lazy collections call into.
package vcfio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/variantio/vcfkit/internal/vcf"
)

// Header is the concrete header registry backing the vcf.Header
// capability: the declared INFO/FORMAT/FILTER lines, the ordered sample
// list, and the raw metadata lines for round-tripping.
type Header struct {
	infos   map[string]*vcf.FieldLine
	formats map[string]*vcf.FieldLine
	filters map[string]*vcf.FieldLine
	samples []string
	meta    []string
}

var _ vcf.Header = (*Header)(nil)

// NewHeader creates an empty registry.
func NewHeader() *Header {
	return &Header{
		infos:   make(map[string]*vcf.FieldLine),
		formats: make(map[string]*vcf.FieldLine),
		filters: make(map[string]*vcf.FieldLine),
	}
}

// AddInfoLine declares an INFO field.
func (h *Header) AddInfoLine(line *vcf.FieldLine) { h.infos[line.ID] = line }

// AddFormatLine declares a FORMAT field.
func (h *Header) AddFormatLine(line *vcf.FieldLine) { h.formats[line.ID] = line }

// AddFilterLine declares a FILTER name.
func (h *Header) AddFilterLine(line *vcf.FieldLine) { h.filters[line.ID] = line }

// SetSampleNames sets the ordered sample list of the #CHROM line.
func (h *Header) SetSampleNames(names []string) { h.samples = names }

// AddMetaLine appends a raw "##" metadata line.
func (h *Header) AddMetaLine(line string) { h.meta = append(h.meta, line) }

// HasInfoLine reports whether an INFO field is declared.
func (h *Header) HasInfoLine(id string) bool { return h.infos[id] != nil }

// InfoLine returns a declared INFO field, or nil.
func (h *Header) InfoLine(id string) *vcf.FieldLine { return h.infos[id] }

// HasFormatLine reports whether a FORMAT field is declared.
func (h *Header) HasFormatLine(id string) bool { return h.formats[id] != nil }

// FormatLine returns a declared FORMAT field, or nil.
func (h *Header) FormatLine(id string) *vcf.FieldLine { return h.formats[id] }

// HasFilterLine reports whether a FILTER name is declared.
func (h *Header) HasFilterLine(id string) bool {
	return id == vcf.PassFilters || h.filters[id] != nil
}

// SampleNames returns the ordered sample list.
func (h *Header) SampleNames() []string { return h.samples }

// MetaLines returns the raw metadata lines in file order.
func (h *Header) MetaLines() []string { return h.meta }

// parseHeaderLine folds one "##" line into the registry. Structured
// INFO/FORMAT/FILTER lines are parsed for their ID, Number, and Type;
// everything else is kept verbatim only.
func (h *Header) parseHeaderLine(line string) error {
	h.meta = append(h.meta, line)

	switch {
	case strings.HasPrefix(line, "##INFO=<"):
		fl, err := parseFieldLine(strings.TrimPrefix(line, "##INFO=<"))
		if err != nil {
			return fmt.Errorf("malformed INFO header line: %w", err)
		}
		h.infos[fl.ID] = fl
	case strings.HasPrefix(line, "##FORMAT=<"):
		fl, err := parseFieldLine(strings.TrimPrefix(line, "##FORMAT=<"))
		if err != nil {
			return fmt.Errorf("malformed FORMAT header line: %w", err)
		}
		h.formats[fl.ID] = fl
	case strings.HasPrefix(line, "##FILTER=<"):
		fl, err := parseFieldLine(strings.TrimPrefix(line, "##FILTER=<"))
		if err != nil {
			return fmt.Errorf("malformed FILTER header line: %w", err)
		}
		h.filters[fl.ID] = fl
	}
	return nil
}

// parseFieldLine parses the <ID=...,Number=...,Type=...,Description="...">
// body of a structured header line. Values in quotes may contain commas.
func parseFieldLine(body string) (*vcf.FieldLine, error) {
	body = strings.TrimSuffix(body, ">")
	fl := &vcf.FieldLine{Number: vcf.NumberDot, Type: vcf.String}

	for _, kv := range splitStructured(body) {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "ID":
			fl.ID = value
		case "Number":
			n, err := parseNumber(value)
			if err != nil {
				return nil, err
			}
			fl.Number = n
		case "Type":
			t, err := parseFieldType(value)
			if err != nil {
				return nil, err
			}
			fl.Type = t
		case "Description":
			fl.Description = value
		}
	}
	if fl.ID == "" {
		return nil, fmt.Errorf("missing ID entry")
	}
	return fl, nil
}

// splitStructured splits on commas outside double quotes.
func splitStructured(body string) []string {
	var parts []string
	var sb strings.Builder
	inQuotes := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			sb.WriteByte(c)
		case c == ',' && !inQuotes:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	parts = append(parts, sb.String())
	return parts
}

func parseNumber(value string) (int, error) {
	switch value {
	case "A":
		return vcf.NumberA, nil
	case "R":
		return vcf.NumberR, nil
	case "G":
		return vcf.NumberG, nil
	case ".":
		return vcf.NumberDot, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid Number entry %q", value)
	}
	return n, nil
}

func parseFieldType(value string) (vcf.FieldType, error) {
	switch value {
	case "Integer":
		return vcf.Integer, nil
	case "Float":
		return vcf.Float, nil
	case "Flag":
		return vcf.Flag, nil
	case "Character":
		return vcf.Character, nil
	case "String":
		return vcf.String, nil
	}
	return vcf.InvalidFieldType, fmt.Errorf("invalid Type entry %q", value)
}
