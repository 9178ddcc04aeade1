package vcf

// FieldType enumerates the value types a header can declare for INFO and
// FORMAT fields.
type FieldType int

// The declared VCF field types. Integer is represented as int, Float as
// float64, Character as rune.
const (
	InvalidFieldType FieldType = iota
	Integer
	Float
	Flag
	Character
	String
)

func (t FieldType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Flag:
		return "Flag"
	case Character:
		return "Character"
	case String:
		return "String"
	}
	return "Invalid"
}

// Arity sentinels for a field line's Number entry. Positive values are
// fixed counts.
const (
	NumberA = -1 - iota // one value per alternate allele
	NumberR             // one value per allele, reference included
	NumberG             // one value per genotype
	NumberDot           // unbounded
)

// FieldLine is the declared type and arity of one INFO, FORMAT, or FILTER
// header line.
type FieldLine struct {
	ID          string
	Type        FieldType
	Number      int // fixed count when > 0, else one of the Number sentinels
	Description string
}

// Header is the external header capability the record model consults. It
// answers which fields are declared and with what type and arity, and
// carries the ordered sample list; parsing header text into it is not
// this package's concern.
type Header interface {
	HasInfoLine(id string) bool
	InfoLine(id string) *FieldLine
	HasFormatLine(id string) bool
	FormatLine(id string) *FieldLine
	HasFilterLine(id string) bool
	SampleNames() []string
	MetaLines() []string
}
