package vcfio

import (
	"runtime"
	"sync"

	"github.com/variantio/vcfkit/internal/vcf"
)

// RecordTask is one record queued for per-record work, tagged with its
// position in the file so results can be re-ordered.
type RecordTask struct {
	Seq     int
	Variant *vcf.Variant
}

// RecordResult is the outcome of per-record work.
type RecordResult struct {
	Seq     int
	Variant *vcf.Variant
	Err     error
}

// ParallelApply runs fn over records using a pool of workers. Lazy
// genotype decoding dominates per-record cost, and each record decodes
// independently, so records fan out cleanly. Results arrive in completion
// order; use OrderedResults to consume them in file order. Zero workers
// means one per CPU.
func ParallelApply(tasks <-chan RecordTask, workers int, fn func(*vcf.Variant) error) <-chan RecordResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan RecordResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for task := range tasks {
				results <- RecordResult{
					Seq:     task.Seq,
					Variant: task.Variant,
					Err:     fn(task.Variant),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedResults calls fn for each result in sequence order, buffering
// results that complete early. When fn returns an error the remaining
// results are drained so the workers can finish, then the error is
// returned.
func OrderedResults(results <-chan RecordResult, fn func(RecordResult) error) error {
	pending := make(map[int]RecordResult)
	next := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
