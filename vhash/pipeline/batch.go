package pipeline

import (
	"context"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"

	"github.com/sourcegraph/conc/pool"
)

// Result is the outcome of one run in a batch
type Result struct {
	Index int
	Hash  *VideoHash
	Err   error
}

// HashAll runs New for every entry of opts with at most workers runs in
// flight. Results are returned in input order. A failed run is reported in
// its Result and does not stop the others.
func HashAll(ctx context.Context, opts []Options, workers int) []Result {
	return HashAllFunc(ctx, opts, workers, nil)
}

// HashAllFunc is HashAll with a callback invoked as each run finishes.
// onDone may be called from several goroutines at once.
func HashAllFunc(ctx context.Context, opts []Options, workers int, onDone func(Result)) []Result {
	if workers <= 0 {
		workers = internal.DefaultWorkers
	}

	results := make([]Result, len(opts))
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, o := range opts {
		p.Go(func(ctx context.Context) error {
			vh, err := New(ctx, o)
			results[i] = Result{Index: i, Hash: vh, Err: err}
			if err == nil {
				o.Logger.Debug().Object("videohash", vh).Msg("Batch item finished")
			}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	_ = p.Wait()
	return results
}

// DistanceMatrix returns the pairwise Hamming distances of hashes
func DistanceMatrix(hashes []fingerprint.Hash) ([][]int, error) {
	m := make([][]int, len(hashes))
	for i := range m {
		m[i] = make([]int, len(hashes))
	}
	for i := range hashes {
		for j := i + 1; j < len(hashes); j++ {
			d, err := hashes[i].Difference(hashes[j])
			if err != nil {
				return nil, err
			}
			m[i][j], m[j][i] = d, d
		}
	}
	return m, nil
}
