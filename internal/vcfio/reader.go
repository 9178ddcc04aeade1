package vcfio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/variantio/vcfkit/internal/vcf"
)

// Reader streams records from a VCF file. It parses the header into a
// registry, tokenizes each data line, and builds validated records whose
// genotype columns stay unparsed until first access.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
	decoder    *Decoder
	logger     *zap.Logger
	debug      bool
}

// NewReader opens a VCF file, plain or gzipped (detected by magic bytes).
// "-" reads from stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r := &Reader{file: file, logger: zap.NewNop()}

	// Check for the gzip magic number (0x1f, 0x8b).
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.parseHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewReaderFrom creates a reader over an io.Reader (e.g. stdin).
func NewReaderFrom(in io.Reader) (*Reader, error) {
	r := &Reader{
		reader: bufio.NewReader(in),
		logger: zap.NewNop(),
	}
	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetLogger sets the logger used for downgraded warnings.
func (r *Reader) SetLogger(l *zap.Logger) {
	r.logger = l
}

// SetDebug downgrades stop/END disagreements from fatal errors to logged
// warnings on the records this reader builds.
func (r *Reader) SetDebug(debug bool) {
	r.debug = debug
}

// Header returns the parsed header registry.
func (r *Reader) Header() *Header {
	return r.header
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// parseHeader reads the "##" metadata lines into the registry, stopping
// after the #CHROM column line.
func (r *Reader) parseHeader() error {
	header := NewHeader()
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			if err := header.parseHeaderLine(line); err != nil {
				return &ParseError{Line: r.lineNumber, Message: err.Error()}
			}
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				header.SetSampleNames(fields[9:])
			}
			r.header = header
			r.decoder = NewDecoder(header)
			return nil
		}

		return &ParseError{Line: r.lineNumber, Message: "expected #CHROM header line"}
	}
	return &ParseError{Line: r.lineNumber, Message: "no #CHROM header line found"}
}

// Next reads the next record. Returns nil, nil when there are no more
// records.
func (r *Reader) Next() (*vcf.Variant, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read record line: %w", err)
	}
	r.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return r.Next()
	}
	return r.parseLine(line)
}

// parseLine tokenizes one data line and builds a record. The fixed eight
// columns are parsed here; the FORMAT and sample columns go into a lazy
// genotype collection untouched.
func (r *Reader) parseLine(line string) (*vcf.Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	b := vcf.NewVariantBuilder()
	b.SetSource("vcfkit")
	b.SetContig(fields[0])
	b.SetStart(pos)
	b.SetID(fields[2])
	b.SetDebug(r.debug)
	b.SetLogger(r.logger)

	var alts []string
	if fields[4] != "." {
		alts = strings.Split(fields[4], ",")
	}
	if err := b.SetAlleleStrings(fields[3], alts...); err != nil {
		return nil, &ParseError{Line: r.lineNumber, Message: err.Error()}
	}

	if fields[5] != "." {
		qual, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ParseError{
				Line:    r.lineNumber,
				Message: fmt.Sprintf("invalid QUAL value: %s", fields[5]),
			}
		}
		b.SetLog10PError(qual / -10)
	}

	switch fields[6] {
	case ".":
		b.Unfiltered()
	case "PASS":
		b.PassFilters()
	default:
		b.SetFilters(strings.Split(fields[6], ";")...)
	}

	stop := pos + int64(len(fields[3])) - 1
	for _, attr := range parseInfoColumn(fields[7]) {
		b.SetAttribute(attr.key, attr.value)
		if attr.key == vcf.EndKey {
			if s, ok := attr.value.(string); ok {
				if end, err := strconv.ParseInt(s, 10, 64); err == nil {
					stop = end
				}
			}
		}
	}
	b.SetStop(stop)

	if len(fields) > 9 {
		unparsed := strings.Join(fields[8:], "\t")
		alleles, err := alleleSet(fields[3], alts)
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: err.Error()}
		}
		b.SetGenotypes(vcf.NewLazyGenotypesContext(
			r.decoder, unparsed, len(fields)-9, fields[0], pos, alleles))
	}

	v, err := b.Make()
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.lineNumber, err)
	}
	return v, nil
}

type infoAttr struct {
	key   string
	value any
}

// parseInfoColumn splits the INFO column into raw attributes: values stay
// unparsed strings, flags become true. Order is preserved for callers
// that care; the record stores them in a map.
func parseInfoColumn(info string) []infoAttr {
	if info == "." {
		return nil
	}
	var attrs []infoAttr
	for _, kv := range strings.Split(info, ";") {
		key, value, found := strings.Cut(kv, "=")
		if found {
			attrs = append(attrs, infoAttr{key: key, value: value})
		} else {
			attrs = append(attrs, infoAttr{key: key, value: true})
		}
	}
	return attrs
}

// alleleSet builds the shared allele list handed to the lazy genotype
// context, mirroring the record's own set.
func alleleSet(ref string, alts []string) ([]*vcf.Allele, error) {
	alleles := make([]*vcf.Allele, 0, len(alts)+1)
	refAllele, err := vcf.NewAllele(ref, true)
	if err != nil {
		return nil, err
	}
	alleles = append(alleles, refAllele)
	for _, alt := range alts {
		a, err := vcf.NewAllele(alt, false)
		if err != nil {
			return nil, err
		}
		alleles = append(alleles, a)
	}
	return alleles, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError reports a malformed line with its position in the file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
