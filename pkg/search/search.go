// Package search drives the scoring kernels over batches of images,
// sharding work across a pool of scorers and reducing the resulting
// score arrays to best matches.
package search

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/ajroetker/go-highway/hwy"

	"cryomatch/pkg/halfspace"
	"cryomatch/pkg/orient"
	"cryomatch/pkg/projector"
	"cryomatch/pkg/score"
)

// Metric selects which similarity kernel a sweep runs.
type Metric int

const (
	// MetricDiff2 is the summed weighted squared difference.
	MetricDiff2 Metric = iota

	// MetricCC is the negative normalized cross-correlation.
	MetricCC
)

// String returns the metric name used in configs and progress output.
func (m Metric) String() string {
	if m == MetricCC {
		return "cc"
	}
	return "diff2"
}

// ProgressCallback receives sweep progress updates: the number of
// completed and total work items plus a short stage description.
type ProgressCallback func(completed, total int, message string)

// Params configures a sweep pool.
type Params struct {
	// Workers is how many goroutines score concurrently. Zero or
	// negative selects the number of CPUs.
	Workers int

	// Tuning is handed to every worker's scorer.
	Tuning score.Tuning

	// Progress, when non-nil, is called after each image finishes.
	Progress ProgressCallback
}

// Sweep runs similarity sweeps for one mode and projector. Each worker
// owns a scorer, so concurrent shards never share scratch memory; the
// pool is reused across runs.
type Sweep[T hwy.Floats] struct {
	grid     halfspace.Grid
	workers  int
	scorers  []*score.Scorer[T]
	progress ProgressCallback
}

// NewSweep builds a sweep pool over the projector's grid.
func NewSweep[T hwy.Floats](mode score.Mode, proj *projector.Projector[T], params Params) *Sweep[T] {
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	scorers := make([]*score.Scorer[T], workers)
	for i := range scorers {
		scorers[i] = score.NewScorer(mode, proj, params.Tuning)
	}
	return &Sweep[T]{
		grid:     proj.Grid,
		workers:  workers,
		scorers:  scorers,
		progress: params.Progress,
	}
}

// RunCoarse scores every orientation against every translation for each
// image, returning one score array per image laid out as
// [iorient*nTrans+itrans]. Orientations are sharded across the pool and
// every worker writes a disjoint output range, so no synchronization
// beyond the final wait is needed.
func (s *Sweep[T]) RunCoarse(metric Metric, orients orient.Set[T], imgs []score.Image[T], trans score.Translations[T]) ([][]T, error) {
	if err := s.checkImages(imgs); err != nil {
		return nil, err
	}
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	nOrient, nTrans := orients.Len(), trans.Len()
	if nOrient == 0 || nTrans == 0 {
		return nil, fmt.Errorf("empty search grid: %d orientations, %d translations", nOrient, nTrans)
	}

	out := make([][]T, len(imgs))
	perWorker := (nOrient + s.workers - 1) / s.workers
	for i := range imgs {
		out[i] = make([]T, nOrient*nTrans)
		img := imgs[i]

		var wg sync.WaitGroup
		for w := 0; w < s.workers; w++ {
			lo := w * perWorker
			if lo >= nOrient {
				break
			}
			hi := lo + perWorker
			if hi > nOrient {
				hi = nOrient
			}

			wg.Add(1)
			go func(sc *score.Scorer[T], shard orient.Set[T], dst []T) {
				defer wg.Done()
				if metric == MetricCC {
					sc.CCCoarse(shard, img, trans, dst)
				} else {
					sc.Diff2Coarse(shard, img, trans, dst)
				}
			}(s.scorers[w], orients.Slice(lo, hi), out[i][lo*nTrans:hi*nTrans])
		}
		wg.Wait()
		s.report(i+1, len(imgs), "coarse "+metric.String()+" sweep")
	}
	return out, nil
}

// RunFine scores the job list's sparse pairs for each image, returning
// one array per image addressed by pair index. Jobs are sharded across
// the pool; the job list's global pair indexing keeps worker outputs
// disjoint. baselines holds one additive constant per image for the
// diff2 metric and may be nil for all zeros.
func (s *Sweep[T]) RunFine(metric Metric, orients orient.Set[T], imgs []score.Image[T], trans score.Translations[T], jobs score.JobList, baselines []T) ([][]T, error) {
	if err := s.checkImages(imgs); err != nil {
		return nil, err
	}
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	if err := jobs.Validate(orients.Len(), trans.Len()); err != nil {
		return nil, fmt.Errorf("job list rejected: %v", err)
	}
	if baselines != nil && len(baselines) != len(imgs) {
		return nil, fmt.Errorf("%d baselines for %d images", len(baselines), len(imgs))
	}

	nJobs := jobs.Jobs()
	out := make([][]T, len(imgs))
	perWorker := (nJobs + s.workers - 1) / s.workers
	for i := range imgs {
		out[i] = make([]T, jobs.Pairs())
		img := imgs[i]
		var base T
		if baselines != nil {
			base = baselines[i]
		}

		var wg sync.WaitGroup
		for w := 0; w < s.workers; w++ {
			lo := w * perWorker
			if lo >= nJobs {
				break
			}
			hi := lo + perWorker
			if hi > nJobs {
				hi = nJobs
			}

			wg.Add(1)
			go func(sc *score.Scorer[T], shard score.JobList, dst []T) {
				defer wg.Done()
				if metric == MetricCC {
					sc.CCFine(orients, img, trans, shard, dst)
				} else {
					sc.Diff2Fine(orients, img, trans, shard, base, dst)
				}
			}(s.scorers[w], jobs.Slice(lo, hi), out[i])
		}
		wg.Wait()
		s.report(i+1, len(imgs), "fine "+metric.String()+" sweep")
	}
	return out, nil
}

func (s *Sweep[T]) checkImages(imgs []score.Image[T]) error {
	if len(imgs) == 0 {
		return fmt.Errorf("no images to score")
	}
	n := s.grid.Pixels()
	for i, img := range imgs {
		if len(img.Real) != n || len(img.Imag) != n || len(img.Weight) != n {
			return fmt.Errorf("image %d: planes hold %d/%d/%d values, expected %d each",
				i, len(img.Real), len(img.Imag), len(img.Weight), n)
		}
	}
	return nil
}

func checkMetric(m Metric) error {
	if m != MetricDiff2 && m != MetricCC {
		return fmt.Errorf("unknown metric %d", int(m))
	}
	return nil
}

func (s *Sweep[T]) report(completed, total int, message string) {
	if s.progress != nil {
		s.progress(completed, total, message)
	}
}

// Best returns the index and value of the lowest score, or -1 for an
// empty array. Both metrics are oriented so that lower is better.
func Best[T hwy.Floats](scores []T) (int, T) {
	if len(scores) == 0 {
		return -1, 0
	}
	best := 0
	for i, v := range scores {
		if v < scores[best] {
			best = i
		}
	}
	return best, scores[best]
}

// BestPair decomposes the lowest dense score into its orientation and
// translation indices.
func BestPair[T hwy.Floats](scores []T, nTrans int) (iorient, itrans int, value T) {
	if nTrans <= 0 {
		return -1, -1, 0
	}
	i, v := Best(scores)
	if i < 0 {
		return -1, -1, 0
	}
	return i / nTrans, i % nTrans, v
}

// SelectTop builds a sparse job list covering the lowest-scoring
// fraction of a dense landscape, for handing a coarse sweep's winners
// to a fine pass. At least one pair is always kept; runs of kept pairs
// that share an orientation and sit on consecutive translations
// collapse into a single job.
func SelectTop[T hwy.Floats](scores []T, nTrans int, frac float64) score.JobList {
	keep := int(frac * float64(len(scores)))
	if keep < 1 {
		keep = 1
	}
	if keep > len(scores) {
		keep = len(scores)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })
	picked := order[:keep]
	sort.Ints(picked)

	var jobs score.JobList
	for _, pair := range picked {
		io, it := pair/nTrans, pair%nTrans
		n := len(jobs.Rot)
		last := len(jobs.Start) - 1
		if last >= 0 && jobs.Rot[n-1] == io && jobs.Trans[n-1] == it-1 {
			jobs.Count[last]++
		} else {
			jobs.Start = append(jobs.Start, n)
			jobs.Count = append(jobs.Count, 1)
		}
		jobs.Rot = append(jobs.Rot, io)
		jobs.Trans = append(jobs.Trans, it)
	}
	return jobs
}
