package vcf

import (
	"errors"
	"fmt"
)

// ErrImmutableContext is returned when a genotypes context owned by a
// finished record is structurally mutated.
var ErrImmutableContext = errors.New("genotypes context is immutable once owned by a record")

// ValidationError reports a construction-time invariant violation,
// anchored at the offending record's locus.
type ValidationError struct {
	Contig string
	Start  int64
	Msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record at %s:%d: %s", e.Contig, e.Start, e.Msg)
}

func validationErrorf(contig string, start int64, format string, args ...any) error {
	return &ValidationError{Contig: contig, Start: start, Msg: fmt.Sprintf(format, args...)}
}

// DecodeError reports unparseable genotype or attribute text, anchored at
// the record's locus. Records that fail decoding are unusable; there is no
// retry path.
type DecodeError struct {
	Contig string
	Start  int64
	Msg    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error at %s:%d: %s: %v", e.Contig, e.Start, e.Msg, e.Err)
	}
	return fmt.Sprintf("decode error at %s:%d: %s", e.Contig, e.Start, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HeaderConsistencyError reports output that uses a FILTER, INFO, or
// FORMAT key the header never declared.
type HeaderConsistencyError struct {
	Section string // "FILTER", "INFO", or "FORMAT"
	Key     string
}

func (e *HeaderConsistencyError) Error() string {
	return fmt.Sprintf("%s field %q used in record but not declared in the header", e.Section, e.Key)
}
