package vcfio

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantio/vcfkit/internal/vcf"
)

func makeTasks(t *testing.T, n int) <-chan RecordTask {
	t.Helper()
	ch := make(chan RecordTask, n)
	for i := 0; i < n; i++ {
		b := vcf.NewVariantBuilder().SetContig("1").SetStart(int64(100 + i)).SetStop(int64(100 + i))
		require.NoError(t, b.SetAlleleStrings("A", "T"))
		v, err := b.Make()
		require.NoError(t, err)
		ch <- RecordTask{Seq: i, Variant: v}
	}
	close(ch)
	return ch
}

func TestParallelApply_OrderPreservation(t *testing.T) {
	results := ParallelApply(makeTasks(t, 200), 8, func(*vcf.Variant) error { return nil })

	var seqs []int
	err := OrderedResults(results, func(r RecordResult) error {
		require.NoError(t, r.Err)
		seqs = append(seqs, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seqs, 200)
	for i, seq := range seqs {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelApply_SingleWorker(t *testing.T) {
	var calls atomic.Int64
	results := ParallelApply(makeTasks(t, 50), 1, func(*vcf.Variant) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, OrderedResults(results, func(RecordResult) error { return nil }))
	assert.Equal(t, int64(50), calls.Load())
}

func TestParallelApply_WorkErrorsReachResults(t *testing.T) {
	wantErr := errors.New("check failed")
	results := ParallelApply(makeTasks(t, 20), 4, func(v *vcf.Variant) error {
		if v.Start() == 105 {
			return wantErr
		}
		return nil
	})

	failed := 0
	err := OrderedResults(results, func(r RecordResult) error {
		if r.Err != nil {
			failed++
			assert.Equal(t, 5, r.Seq)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestOrderedResults_StopsOnConsumeError(t *testing.T) {
	wantErr := errors.New("stop here")
	results := ParallelApply(makeTasks(t, 100), 8, func(*vcf.Variant) error { return nil })

	seen := 0
	err := OrderedResults(results, func(r RecordResult) error {
		seen++
		if r.Seq == 10 {
			return wantErr
		}
		return nil
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 11, seen)
}
