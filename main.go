package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"

	"fdnet/config"
	"fdnet/dataset"
	"fdnet/metrics"
	"fdnet/neuralnet"
	"fdnet/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/synthetic.yaml", "Path to YAML config")
	iterations := flag.Int("iterations", 0, "Number of training iterations")
	batchSize := flag.Int("batch-size", 0, "Mini-batch size")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N iterations")
	precision := flag.String("precision", "", "float32 or float64")
	historyCSV := flag.String("history-csv", "", "Write loss history to this CSV file")
	limit := flag.Int("limit", 0, "Load at most N examples per split")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		Iterations:   *iterations,
		BatchSize:    *batchSize,
		LearningRate: *learningRate,
		Seed:         *seed,
		LogEvery:     *logEvery,
		Precision:    *precision,
		HistoryCSV:   *historyCSV,
		Limit:        *limit,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := log.New(os.Stderr, fmt.Sprintf("run=%s ", uuid.NewString()[:8]), log.LstdFlags)
	logger.Printf("cpu=%q logical_cores=%d avx2=%v", cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, cpuid.CPU.Supports(cpuid.AVX2))

	train, test, err := loadData(cfg)
	if err != nil {
		logger.Fatalf("load dataset: %v", err)
	}
	logger.Printf("dataset=%s train=%d test=%d features=%d", cfg.Dataset.Format, train.Len(), lenOf(test), train.Features())

	var names []string
	if cfg.Dataset.LabelNames != "" {
		names, err = dataset.ReadLabelNames(cfg.Dataset.LabelNames)
		if err != nil {
			logger.Fatalf("read label names: %v", err)
		}
	}

	switch cfg.Precision {
	case "float32":
		err = run[float32](cfg, train, test, names, logger)
	default:
		err = run[float64](cfg, train, test, names, logger)
	}
	if err != nil {
		logger.Fatalf("training failed: %v", err)
	}
}

func loadData(cfg *config.Config) (train, test *dataset.Dataset, err error) {
	d := cfg.Dataset
	oneHot := d.OneHotTargets()
	switch d.Format {
	case "mnist":
		train, err = dataset.LoadMNIST(d.TrainImages, d.TrainLabels, d.Limit, oneHot)
		if err != nil || d.TestImages == "" {
			return train, nil, err
		}
		test, err = dataset.LoadMNIST(d.TestImages, d.TestLabels, d.Limit, oneHot)
	case "cifar10":
		train, err = dataset.LoadCIFAR10(d.TrainImages, d.Limit, oneHot)
		if err != nil || d.TestImages == "" {
			return train, nil, err
		}
		test, err = dataset.LoadCIFAR10(d.TestImages, d.Limit, oneHot)
	case "synthetic":
		train, test, err = dataset.BlobsSplit(d.Samples, d.Samples/5+1, cfg.InputSize, cfg.OutputSize, 0.1, cfg.Seed, oneHot)
	default:
		return nil, nil, fmt.Errorf("unknown format %q", d.Format)
	}
	return train, test, err
}

func run[T neuralnet.Float](cfg *config.Config, train, test *dataset.Dataset, names []string, logger *log.Logger) error {
	if train.Features() != cfg.InputSize {
		return fmt.Errorf("dataset has %d features but input_size is %d", train.Features(), cfg.InputSize)
	}
	if train.Classes != cfg.OutputSize {
		return fmt.Errorf("dataset has %d classes but output_size is %d", train.Classes, cfg.OutputSize)
	}

	net, err := neuralnet.NewTwoLayerNet[T](cfg.InputSize, cfg.HiddenSize, cfg.OutputSize, cfg.WeightInitStd, cfg.Seed)
	if err != nil {
		return err
	}
	activation, err := neuralnet.ActivationByName(cfg.Activation)
	if err != nil {
		return err
	}
	loss, err := neuralnet.LossByName[T](cfg.Loss)
	if err != nil {
		return err
	}
	net.SetActivation(activation)
	net.SetLoss(loss)
	net.SetParallel(cfg.ParallelGradients())
	logger.Printf("network=%q parallel=%v", net.String(), cfg.ParallelGradients())

	res, err := trainer.Run[T](net, &neuralnet.SGD[T]{LearningRate: cfg.LearningRate, Decay: cfg.LRDecay},
		neuralnet.Convert[T](train.Inputs), neuralnet.Convert[T](train.Targets),
		trainer.RunConfig{
			Iterations: cfg.Iterations,
			BatchSize:  cfg.BatchSize,
			LogEvery:   cfg.LogEvery,
			Seed:       cfg.Seed,
			Logger:     logger,
		})
	if err != nil {
		return err
	}

	s := metrics.Summarize(res.History.Loss)
	logger.Printf("done elapsed=%s first_loss=%.4f last_loss=%.4f min_loss=%.4f mean_loss=%.4f std_loss=%.4f",
		res.Elapsed, s.First, s.Last, s.Min, s.Mean, s.StdDev)

	if test != nil {
		ev := trainer.Evaluate[T](net, neuralnet.Convert[T](test.Inputs), neuralnet.Convert[T](test.Targets))
		logger.Printf("test loss=%.4f accuracy=%.4f", ev.Loss, ev.Accuracy)
		for c, acc := range ev.PerClass {
			if acc < 0 {
				continue
			}
			logger.Printf("test class=%s accuracy=%.4f", className(names, c), acc)
		}
	}

	if cfg.HistoryCSV != "" {
		f, err := os.Create(cfg.HistoryCSV)
		if err != nil {
			return fmt.Errorf("create history csv: %w", err)
		}
		defer f.Close()
		if err := trainer.WriteHistoryCSV(f, res.History); err != nil {
			return fmt.Errorf("write history csv: %w", err)
		}
		logger.Printf("history=%s rows=%d", cfg.HistoryCSV, len(res.History.Loss))
	}
	return nil
}

func className(names []string, c int) string {
	if c < len(names) {
		return names[c]
	}
	return fmt.Sprint(c)
}

func lenOf(d *dataset.Dataset) int {
	if d == nil {
		return 0
	}
	return d.Len()
}
