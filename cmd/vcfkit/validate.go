package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/variantio/vcfkit/internal/vcf"
	"github.com/variantio/vcfkit/internal/vcfio"
)

func newValidateCmd(verbose *bool) *cobra.Command {
	var (
		dbsnpFile string
		keepGoing bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "validate <input.vcf>",
		Short: "Run strict validation over every record",
		Long: `Beyond the construction invariants enforced while reading, run the
opt-in strict checks on every record: alternate alleles observed in at
least one genotype, AN/AC attributes agreeing with computed counts, and
(with --dbsnp) rs identifiers known to dbSNP.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], dbsnpFile, keepGoing, workers, *verbose)
		},
	}

	cmd.Flags().StringVar(&dbsnpFile, "dbsnp", "", "File of known rs identifiers, one per line")
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false,
		"Report all failures instead of stopping at the first")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"Validation workers (0 = one per CPU)")

	return cmd
}

func runValidate(inputPath, dbsnpFile string, keepGoing bool, workers int, verbose bool) error {
	logger := newLogger(verbose)
	defer logger.Sync()

	var knownIDs map[string]bool
	if dbsnpFile != "" {
		var err error
		knownIDs, err = loadIDFile(dbsnpFile)
		if err != nil {
			return err
		}
		logger.Debug("loaded dbSNP identifiers", zap.Int("count", len(knownIDs)))
	}

	reader, err := vcfio.NewReader(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	reader.SetLogger(logger)

	// The checks force genotype decoding, which dominates per-record
	// cost; fan the records out over a worker pool and report failures
	// in file order.
	tasks := make(chan vcfio.RecordTask)
	var readErr error
	go func() {
		defer close(tasks)
		seq := 0
		for {
			v, err := reader.Next()
			if err != nil {
				readErr = err
				return
			}
			if v == nil {
				return
			}
			tasks <- vcfio.RecordTask{Seq: seq, Variant: v}
			seq++
		}
	}()

	results := vcfio.ParallelApply(tasks, workers, func(v *vcf.Variant) error {
		checks := []func() error{
			v.ValidateAlternateAlleles,
			v.ValidateChromosomeCounts,
		}
		if knownIDs != nil {
			checks = append(checks, func() error { return v.ValidateRSIDs(knownIDs) })
		}
		var errs []error
		for _, check := range checks {
			if err := check(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	failures := 0
	err = vcfio.OrderedResults(results, func(r vcfio.RecordResult) error {
		if r.Err == nil {
			return nil
		}
		if !keepGoing {
			return r.Err
		}
		fmt.Fprintln(os.Stderr, r.Err)
		failures++
		return nil
	})
	if err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	if failures > 0 {
		return fmt.Errorf("%d validation failures", failures)
	}
	return nil
}

func loadIDFile(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dbsnp file: %w", err)
	}
	defer f.Close()

	ids := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids[id] = true
		}
	}
	return ids, scanner.Err()
}
