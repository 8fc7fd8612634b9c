package util

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/lintang-b-s/Partitionx/pkg"
	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// defaults below still apply
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// PartitionConfig holds the tunables of the FM driver and the genetic layer.
type PartitionConfig struct {
	MaxIterations   int
	PopulationSize  int
	CrossoverPoints int
	ConvergenceRate float64
	MaxGenerations  int
	Workers         int
	Seed            uint64
}

func setPartitionDefaults() {
	viper.SetDefault("max_iterations", pkg.DEFAULT_MAX_ITERATIONS)
	viper.SetDefault("population_size", pkg.DEFAULT_POPULATION_SIZE)
	viper.SetDefault("crossover_points", pkg.DEFAULT_CROSSOVER_POINTS)
	viper.SetDefault("convergence_rate", pkg.DEFAULT_CONVERGENCE_RATE)
	viper.SetDefault("max_generations", 0)
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("seed", 0)
}

// LoadPartitionConfig reads the partitioner keys, falling back to the defaults for unset keys.
func LoadPartitionConfig() PartitionConfig {
	setPartitionDefaults()
	return PartitionConfig{
		MaxIterations:   viper.GetInt("max_iterations"),
		PopulationSize:  viper.GetInt("population_size"),
		CrossoverPoints: viper.GetInt("crossover_points"),
		ConvergenceRate: viper.GetFloat64("convergence_rate"),
		MaxGenerations:  viper.GetInt("max_generations"),
		Workers:         viper.GetInt("workers"),
		Seed:            viper.GetUint64("seed"),
	}
}

func DefaultPartitionConfig() PartitionConfig {
	return PartitionConfig{
		MaxIterations:   pkg.DEFAULT_MAX_ITERATIONS,
		PopulationSize:  pkg.DEFAULT_POPULATION_SIZE,
		CrossoverPoints: pkg.DEFAULT_CROSSOVER_POINTS,
		ConvergenceRate: pkg.DEFAULT_CONVERGENCE_RATE,
		Workers:         runtime.NumCPU(),
	}
}

// Validate reports the first tunable that would make the partitioner misbehave.
func (c PartitionConfig) Validate() error {
	switch {
	case c.MaxIterations < 1:
		return WrapErrorf(nil, ErrBadParamInput, "max_iterations must be at least 1, got %d", c.MaxIterations)
	case c.PopulationSize < 2:
		return WrapErrorf(nil, ErrBadParamInput, "population_size must be at least 2, got %d", c.PopulationSize)
	case c.CrossoverPoints < 0:
		return WrapErrorf(nil, ErrBadParamInput, "crossover_points must not be negative, got %d", c.CrossoverPoints)
	case c.ConvergenceRate <= 0 || c.ConvergenceRate > 1:
		return WrapErrorf(nil, ErrBadParamInput, "convergence_rate must be in (0,1], got %v", c.ConvergenceRate)
	case c.MaxGenerations < 0:
		return WrapErrorf(nil, ErrBadParamInput, "max_generations must not be negative, got %d", c.MaxGenerations)
	}
	return nil
}

// ServiceLimits bound the work one api request can cause.
type ServiceLimits struct {
	MaxCells       int
	MaxPins        int
	MaxGenerations int
}

func LoadServiceLimits() ServiceLimits {
	viper.SetDefault("MAX_CELLS", pkg.DEFAULT_MAX_CELLS)
	viper.SetDefault("MAX_PINS", pkg.DEFAULT_MAX_PINS)
	viper.SetDefault("API_MAX_GENERATIONS", pkg.DEFAULT_API_MAX_GENERATIONS)
	return ServiceLimits{
		MaxCells:       viper.GetInt("MAX_CELLS"),
		MaxPins:        viper.GetInt("MAX_PINS"),
		MaxGenerations: viper.GetInt("API_MAX_GENERATIONS"),
	}
}

func DefaultServiceLimits() ServiceLimits {
	return ServiceLimits{
		MaxCells:       pkg.DEFAULT_MAX_CELLS,
		MaxPins:        pkg.DEFAULT_MAX_PINS,
		MaxGenerations: pkg.DEFAULT_API_MAX_GENERATIONS,
	}
}
