package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/Partitionx/pkg"
	"github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/logger"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	netlistFile = flag.String("netlist", "./data/netlist.txt", "netlist file (.bz2 is decompressed)")
	algorithm   = flag.String("algorithm", string(pkg.ALGORITHM_FM), "fm or genetic")
	seed        = flag.Uint64("seed", 0, "random seed, 0 uses the config seed or the clock")
	verbose     = flag.Bool("verbose", false, "debug logging")
	output      = flag.String("output", "", "write the partition to this file (.bz2 is compressed)")
	initial     = flag.String("initial", "", "start fm from this partition file instead of a random bisection")
	logDir      = flag.String("log_dir", "", "also write logs to <log_dir>/logs/partition-<timestamp>.log")
	saveNetlist = flag.String("save_netlist", "", "write the parsed netlist to this file (.bz2 is compressed)")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}

	var (
		log *zap.Logger
		err error
	)
	if *logDir != "" {
		log, err = logger.NewWithLogFile(*logDir, *verbose)
	} else {
		if *verbose {
			viper.Set("log_level", "debug")
		}
		log, err = logger.New()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := util.LoadPartitionConfig()
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	hg, err := datastructure.ReadNetlist(*netlistFile)
	if err != nil {
		log.Fatal("read netlist", zap.Error(err))
	}
	log.Info("netlist loaded", zap.String("file", *netlistFile), zap.Int("cells", hg.NumberOfCells()),
		zap.Int("nets", hg.NumberOfNets()), zap.Int("pins", hg.NumberOfPins()), zap.Int("pmax", hg.GetPmax()))

	if *saveNetlist != "" {
		if err := datastructure.WriteNetlistFile(*saveNetlist, hg); err != nil {
			log.Fatal("write netlist", zap.Error(err))
		}
		log.Info("netlist written", zap.String("file", *saveNetlist))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := partitioner.NewRandomSource(cfg.Seed)
	start := time.Now()

	var result *partitioner.FinalResult
	if *initial != "" {
		if pkg.Algorithm(*algorithm) != pkg.ALGORITHM_FM {
			log.Fatal("an initial partition is only supported by fm", zap.String("algorithm", *algorithm))
		}
		initialPart, err := partitioner.ReadPartitionFile(*initial, hg.NumberOfCells())
		if err != nil {
			log.Fatal("read initial partition", zap.Error(err))
		}
		result, err = partitioner.PartitionFrom(ctx, hg, initialPart.Assignment, cfg, rng, log, nil)
		if err != nil {
			log.Fatal("partition", zap.Error(err))
		}
	} else {
		result, err = partitioner.Partition(ctx, hg, pkg.Algorithm(*algorithm), cfg, rng, log, nil)
		if err != nil {
			log.Fatal("partition", zap.Error(err))
		}
	}

	block0, block1 := result.Blocks()
	log.Info("partition finished", zap.String("algorithm", *algorithm), zap.Uint64("seed", cfg.Seed),
		zap.Int("cutsize", result.Cutsize), zap.Int("iterations", result.Iterations),
		zap.Int("generations", result.Generations), zap.Duration("took", time.Since(start)))
	fmt.Printf("cutsize: %d\nblock 0: %d cells\nblock 1: %d cells\n", result.Cutsize, len(block0), len(block1))

	if *output != "" {
		if err := partitioner.WritePartitionFile(*output, result); err != nil {
			log.Fatal("write partition", zap.Error(err))
		}
		log.Info("partition written", zap.String("file", *output))
	}
}
