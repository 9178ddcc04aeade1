package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/variantio/vcfkit/internal/vcf"
	"github.com/variantio/vcfkit/internal/vcfio"
)

func newStatsCmd(verbose *bool) *cobra.Command {
	var withGenotypes bool

	cmd := &cobra.Command{
		Use:   "stats <input.vcf>",
		Short: "Summarize variant and genotype types",
		Long: `Tally record classifications (SNP, MNP, INDEL, MIXED, SYMBOLIC) across a
VCF file. With --genotypes, also tally per-sample genotype types, which
forces genotype decoding for every record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0], withGenotypes, *verbose)
		},
	}

	cmd.Flags().BoolVarP(&withGenotypes, "genotypes", "g", false,
		"Include per-genotype-type counts (decodes all sample columns)")

	return cmd
}

func runStats(inputPath string, withGenotypes, verbose bool) error {
	logger := newLogger(verbose)
	defer logger.Sync()

	reader, err := vcfio.NewReader(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	reader.SetLogger(logger)

	records := 0
	sites := 0 // sites carrying at least one genotype, answered without decoding
	variantTypes := map[vcf.VariantType]int{}
	genotypeTypes := map[vcf.GenotypeType]int{}

	for {
		v, err := reader.Next()
		if err != nil {
			return err
		}
		if v == nil {
			break
		}
		records++
		variantTypes[v.Type()]++
		if v.HasGenotypes() {
			sites++
		}
		if withGenotypes {
			counts, err := v.GenotypeTypeCounts()
			if err != nil {
				return err
			}
			for t, n := range counts {
				genotypeTypes[t] += n
			}
		}
	}

	fmt.Fprintf(os.Stdout, "records\t%d\n", records)
	fmt.Fprintf(os.Stdout, "genotyped sites\t%d\n", sites)
	for _, t := range []vcf.VariantType{
		vcf.VariantSNP, vcf.VariantMNP, vcf.VariantIndel,
		vcf.VariantMixed, vcf.VariantSymbolic, vcf.VariantNoVariation,
	} {
		if variantTypes[t] > 0 {
			fmt.Fprintf(os.Stdout, "%s\t%d\n", t, variantTypes[t])
		}
	}
	if withGenotypes {
		for _, t := range []vcf.GenotypeType{
			vcf.GenotypeHomRef, vcf.GenotypeHet, vcf.GenotypeHomVar,
			vcf.GenotypeNoCall, vcf.GenotypeMixed, vcf.GenotypeUnavailable,
		} {
			if genotypeTypes[t] > 0 {
				fmt.Fprintf(os.Stdout, "%s\t%d\n", t, genotypeTypes[t])
			}
		}
	}
	return nil
}
