package vcf

// VCF text tokens and reserved keys.
const (
	missingValue = "."

	fieldSeparator    = "\t"
	infoSeparator     = ";"
	filterSeparator   = ";"
	genotypeSeparator = ":"
	listSeparator     = ","
	phasedSeparator   = "|"
	unphasedSeparator = "/"

	// PassFilters is the canonical PASS token of the FILTER column and
	// the FT genotype field.
	PassFilters = "PASS"

	// Reserved genotype field keys with inline representations.
	GenotypeKey        = "GT"
	GenotypeQualityKey = "GQ"
	DepthKey           = "DP"
	AlleleDepthsKey    = "AD"
	LikelihoodsKey     = "PL"
	OldLikelihoodsKey  = "GL"
	GenotypeFilterKey  = "FT"

	// Reserved INFO keys consulted by the record model.
	EndKey             = "END"
	AlleleNumberKey    = "AN"
	AlleleCountKey     = "AC"
	AlleleFrequencyKey = "AF"
	DbSNPMembershipKey = "DB"
)
