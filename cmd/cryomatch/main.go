package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajroetker/go-highway/hwy"
	"gonum.org/v1/gonum/stat"

	"cryomatch/internal/scene"
	"cryomatch/pkg/config"
	"cryomatch/pkg/score"
	"cryomatch/pkg/search"
	"cryomatch/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	initConfig := flag.String("init-config", "", "Write a default configuration file to this path and exit")
	metric := flag.String("metric", "", "Similarity metric: diff2 or cc (default: config value)")
	mode := flag.String("mode", "", "Projection geometry: 2d, ref3d or data3d (default: config value)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: config value)")
	observations := flag.Int("observations", 0, "Number of images to fabricate and match (default: config value)")
	noise := flag.Float64("noise", -1, "Additive noise level (default: config value)")
	outputDir := flag.String("out", "", "Output directory (default: config value)")
	flag.Parse()

	if *initConfig != "" {
		if err := config.CreateDefaultConfigFile(*initConfig); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *initConfig)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Apply command line overrides
	if *metric != "" {
		cfg.Search.Metric = *metric
	}
	if *mode != "" {
		cfg.Scene.Mode = *mode
	}
	if *workers > 0 {
		cfg.Search.Workers = *workers
	}
	if *observations > 0 {
		cfg.Scene.Observations = *observations
	}
	if *noise >= 0 {
		cfg.Scene.Noise = *noise
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	fmt.Println("================================")
	fmt.Println("CRYOMATCH: FREQUENCY-SPACE REFERENCE MATCHING")
	fmt.Println("Dense and sparse similarity sweeps over orientations and shifts")
	fmt.Println("================================")

	startTime := time.Now()
	if cfg.Search.Precision == "float32" {
		err = run[float32](cfg)
	} else {
		err = run[float64](cfg)
	}
	if err != nil {
		log.Fatalf("Matching failed: %v", err)
	}

	fmt.Printf("\nMatching completed successfully in %.2f seconds!\n", time.Since(startTime).Seconds())
}

// run executes the full matching pipeline at the configured precision.
func run[T hwy.Floats](cfg *config.Config) error {
	mode, err := parseMode(cfg.Scene.Mode)
	if err != nil {
		return err
	}
	metric, err := parseMetric(cfg.Search.Metric)
	if err != nil {
		return err
	}
	vector, err := parseVector(cfg.Tuning.Vector)
	if err != nil {
		return err
	}

	fmt.Println("\nStep 1: Fabricating the synthetic scene...")
	angles := anglesFor(cfg, mode)
	sc, err := scene.Build[T](scene.Params{
		Size:         cfg.Scene.Size,
		MaxR:         cfg.Scene.MaxR,
		Mode:         mode,
		Features:     featuresFor(cfg),
		Angles:       angles,
		ShiftHalf:    cfg.Scene.ShiftHalf,
		ShiftStep:    cfg.Scene.ShiftStep,
		Observations: cfg.Scene.Observations,
		Noise:        cfg.Scene.Noise,
		Seed:         cfg.Scene.Seed,
		WeightEdge:   cfg.Scene.WeightEdge,
		Gridded:      cfg.Scene.Gridded,
	})
	if err != nil {
		return fmt.Errorf("failed to build scene: %v", err)
	}
	nOrient, nTrans := sc.Orients.Len(), sc.Trans.Len()
	reference := "analytic"
	if cfg.Scene.Gridded {
		reference = "gridded"
	}
	fmt.Printf("Frequency grid: %dx%dx%d, cutoff %d, %s reference\n", sc.Grid.X, sc.Grid.Y, sc.Grid.Z, sc.Grid.MaxR, reference)
	fmt.Printf("Search space: %d orientations x %d shifts, %d observations\n", nOrient, nTrans, len(sc.Images))

	fmt.Println("\nStep 2: Running the coarse sweep...")
	sweep := search.NewSweep(mode, sc.Proj, search.Params{
		Workers: cfg.Search.Workers,
		Tuning: score.Tuning{
			BlockSize:   cfg.Tuning.BlockSize,
			OrientBlock: cfg.Tuning.OrientBlock,
			Vector:      vector,
		},
		Progress: sweepProgress(cfg.Output.Verbose),
	})
	coarseStart := time.Now()
	coarse, err := sweep.RunCoarse(metric, sc.Orients, sc.Images, sc.Trans)
	if err != nil {
		return fmt.Errorf("coarse sweep failed: %v", err)
	}
	coarseTime := time.Since(coarseStart)

	fmt.Println("\nStep 3: Refining the top candidates...")
	fineStart := time.Now()
	fine := make([][]T, len(sc.Images))
	jobsPerImage := make([]score.JobList, len(sc.Images))
	for i := range sc.Images {
		jobs := search.SelectTop(coarse[i], nTrans, cfg.Search.FineFraction)
		out, err := sweep.RunFine(metric, sc.Orients, sc.Images[i:i+1], sc.Trans, jobs, nil)
		if err != nil {
			return fmt.Errorf("fine pass failed for observation %d: %v", i, err)
		}
		fine[i] = out[0]
		jobsPerImage[i] = jobs
		if cfg.Output.Verbose {
			fmt.Printf("\rRefining observations: %.1f%% complete", float64(i+1)/float64(len(sc.Images))*100)
		}
	}
	if cfg.Output.Verbose {
		fmt.Println()
	}
	fineTime := time.Since(fineStart)

	fmt.Println("\nStep 4: Reporting matches...")
	recovered := 0
	for i := range sc.Images {
		cio, cit, cval := search.BestPair(coarse[i], nTrans)
		p, fval := search.Best(fine[i])
		fio, fit := jobsPerImage[i].Rot[p], jobsPerImage[i].Trans[p]
		truth := sc.Truth[i]

		status := "missed"
		if fio == truth.Orient && fit == truth.Trans {
			status = "recovered"
			recovered++
		}

		dx, dy := shiftOffsets(fit, cfg.Scene.ShiftHalf, cfg.Scene.ShiftStep)
		fmt.Printf("Observation %d:\n", i)
		fmt.Printf("- Coarse best: orientation %d, shift %d (score %.6g)\n", cio, cit, float64(cval))
		fmt.Printf("- Fine best:   orientation %d (%s), shift (%+.1f, %+.1f) px (score %.6g)\n",
			fio, describeOrientation(angles[fio], mode), dx, dy, float64(fval))
		fmt.Printf("- Truth:       orientation %d, shift %d [%s]\n", truth.Orient, truth.Trans, status)
	}
	fmt.Printf("\nRecovered %d/%d observations at the exact grid point\n", recovered, len(sc.Images))

	landscape := toFloat64s(coarse[0])
	fmt.Printf("Landscape statistics (observation 0): mean %.4g, stddev %.4g\n",
		stat.Mean(landscape, nil), stat.StdDev(landscape, nil))
	if len(fine[0]) > 1 {
		coarseAt := make([]float64, len(fine[0]))
		for p := range coarseAt {
			coarseAt[p] = float64(coarse[0][jobsPerImage[0].Rot[p]*nTrans+jobsPerImage[0].Trans[p]])
		}
		fmt.Printf("Coarse/fine agreement (observation 0): r = %.4f over %d refined pairs\n",
			stat.Correlation(coarseAt, toFloat64s(fine[0]), nil), len(fine[0]))
	}

	fmt.Println("\nParallel sweep performance:")
	fmt.Printf("- Used %d workers\n", cfg.Search.Workers)
	fmt.Printf("- Coarse sweep: %d pairs per image in %.2f seconds\n", nOrient*nTrans, coarseTime.Seconds())
	fmt.Printf("- Fine pass: refined %.1f%% of each landscape in %.2f seconds\n",
		cfg.Search.FineFraction*100, fineTime.Seconds())

	fmt.Println("\nStep 5: Writing outputs...")
	if cfg.Output.SaveHeatmaps {
		maps := make([]*visualization.Heatmap[T], len(coarse))
		for i := range coarse {
			maps[i] = visualization.NewHeatmap(coarse[i], nOrient, nTrans)
		}
		dir := filepath.Join(cfg.Output.Dir, "landscapes")
		if err := visualization.SaveAll(dir, "scores", maps, cfg.Output.HeatmapCell); err != nil {
			return fmt.Errorf("failed to save landscapes: %v", err)
		}
		fmt.Printf("Score landscapes saved to: %s\n", dir)
	}
	cfgPath := filepath.Join(cfg.Output.Dir, "config.yaml")
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save effective config: %v", err)
	}
	fmt.Printf("Effective configuration saved to: %s\n", cfgPath)

	return nil
}

func parseMode(s string) (score.Mode, error) {
	switch s {
	case "2d":
		return score.Mode2D, nil
	case "ref3d":
		return score.ModeRef3D, nil
	case "data3d":
		return score.ModeData3D, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want 2d, ref3d or data3d)", s)
	}
}

func parseMetric(s string) (search.Metric, error) {
	switch s {
	case "diff2":
		return search.MetricDiff2, nil
	case "cc":
		return search.MetricCC, nil
	default:
		return 0, fmt.Errorf("unknown metric %q (want diff2 or cc)", s)
	}
}

func parseVector(s string) (score.VectorMode, error) {
	switch s {
	case "", "auto":
		return score.VectorAuto, nil
	case "on":
		return score.VectorOn, nil
	case "off":
		return score.VectorOff, nil
	default:
		return 0, fmt.Errorf("unknown vector setting %q (want auto, on or off)", s)
	}
}

func anglesFor(cfg *config.Config, mode score.Mode) [][3]float64 {
	if mode == score.Mode2D {
		return scene.PsiGrid(cfg.Scene.PsiSteps)
	}
	return scene.EulerGrid(cfg.Scene.RotSteps, cfg.Scene.TiltSteps, cfg.Scene.PsiSteps)
}

func featuresFor(cfg *config.Config) []scene.Feature {
	fs := make([]scene.Feature, len(cfg.Scene.Features))
	for i, f := range cfg.Scene.Features {
		fs[i] = scene.Feature{Amp: f.Amp, Sigma: f.Sigma, Center: f.Center}
	}
	return fs
}

// sweepProgress prints coarse sweep progress. The fine pass reports its
// own per-observation progress instead.
func sweepProgress(verbose bool) search.ProgressCallback {
	if !verbose {
		return nil
	}
	return func(done, total int, msg string) {
		if !strings.HasPrefix(msg, "coarse") {
			return
		}
		fmt.Printf("\rCoarse sweep: %.1f%% complete", float64(done)/float64(total)*100)
		if done == total {
			fmt.Println()
		}
	}
}

func describeOrientation(a [3]float64, mode score.Mode) string {
	deg := 180 / math.Pi
	if mode == score.Mode2D {
		return fmt.Sprintf("psi %.1f deg", a[2]*deg)
	}
	return fmt.Sprintf("rot %.1f tilt %.1f psi %.1f deg", a[0]*deg, a[1]*deg, a[2]*deg)
}

// shiftOffsets converts a translation index back to pixel offsets.
func shiftOffsets(it, half int, step float64) (dx, dy float64) {
	n := 2*half + 1
	return float64(it%n-half) * step, float64(it/n-half) * step
}

func toFloat64s[T hwy.Floats](src []T) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}
