package partitioner

import (
	"context"
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/lintang-b-s/Partitionx/pkg"
	"github.com/lintang-b-s/Partitionx/pkg/concurrent"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

/*
GeneticPartitioner. steady state genetic search over bisections. every generation picks two
parents by fitness, builds two offspring with a multi-point crossover, mutates them, refines
each with one fm pass and lets them replace the parent they resemble most.
the loop ends once ConvergenceRate of the population is within one cut of the best chromosome.
*/
type GeneticPartitioner struct {
	hg     *da.Hypergraph
	cfg    util.PartitionConfig
	rng    RandomSource
	logger *zap.Logger
	hook   StepHook

	population []*PartitionState
	best       *PartitionState
	generation int
}

func NewGeneticPartitioner(hg *da.Hypergraph, cfg util.PartitionConfig, rng RandomSource, logger *zap.Logger) (*GeneticPartitioner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneticPartitioner{
		hg:     hg,
		cfg:    cfg,
		rng:    rng,
		logger: logger,
	}, nil
}

func (gp *GeneticPartitioner) SetStepHook(hook StepHook) {
	gp.hook = hook
}

func (gp *GeneticPartitioner) Run() *FinalResult {
	result, _ := gp.RunContext(context.Background())
	return result
}

// RunContext is Run that stops before the next generation once ctx is done.
func (gp *GeneticPartitioner) RunContext(ctx context.Context) (*FinalResult, error) {
	gp.population = gp.randomPopulation()
	gp.generation = 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fitness, total, cumulative := calculateFitness(gp.population)
		parents := selectParents(cumulative, total, gp.rng)

		points := crossoverPoints(gp.hg.NumberOfCells(), gp.cfg.CrossoverPoints, gp.rng)
		child1, child2 := crossover(gp.population[parents[0]].blockOf, gp.population[parents[1]].blockOf, points)
		mutate(child1, gp.rng)
		mutate(child2, gp.rng)

		offspring := gp.localImprovement([][]Block{child1, child2})
		replaceWithOffspring(gp.population, fitness, parents, offspring)
		gp.generation++

		stop, best, rate := stoppingCriterion(gp.population, gp.cfg.ConvergenceRate)
		gp.best = best
		gp.logger.Info("generation finished", zap.Int("generation", gp.generation),
			zap.Int("mincut", best.mincut), zap.Float64("rate", rate))
		if gp.hook != nil {
			gp.hook(gp.CurrentState())
		}

		if stop || (gp.cfg.MaxGenerations > 0 && gp.generation >= gp.cfg.MaxGenerations) {
			break
		}
	}

	return &FinalResult{
		Assignment:  gp.best.GetBestAssignment(),
		Cutsize:     gp.best.mincut,
		Iterations:  gp.best.iteration,
		Generations: gp.generation,
	}, nil
}

// CurrentState returns the best chromosome of the latest generation.
func (gp *GeneticPartitioner) CurrentState() Snapshot {
	if gp.best == nil {
		return Snapshot{Event: GENERATION_EVENT, MovedCell: da.INVALID_INDEX}
	}
	snap := gp.best.Snapshot(GENERATION_EVENT)
	snap.Generation = gp.generation
	return snap
}

// randomPopulation builds PopulationSize random chromosomes without fm refinement.
// seeds are drawn up front so the population does not depend on goroutine scheduling.
func (gp *GeneticPartitioner) randomPopulation() []*PartitionState {
	seeds := make([]RandomSource, gp.cfg.PopulationSize)
	for i := range seeds {
		seeds[i] = deriveRandomSource(gp.rng)
	}

	population := make([]*PartitionState, gp.cfg.PopulationSize)
	p := pool.New().WithMaxGoroutines(gp.cfg.Workers)
	for i := range population {
		p.Go(func() {
			population[i] = NewPartitionState(gp.hg, nil, seeds[i])
		})
	}
	p.Wait()
	return population
}

type refineJob struct {
	assignment []Block
	rng        RandomSource
}

// localImprovement runs one fm pass on every offspring, each with its own random stream.
func (gp *GeneticPartitioner) localImprovement(offspring [][]Block) []*PartitionState {
	jobs := make([]refineJob, len(offspring))
	for i, child := range offspring {
		jobs[i] = refineJob{assignment: child, rng: deriveRandomSource(gp.rng)}
	}

	return concurrent.Map(gp.cfg.Workers, jobs, func(job refineJob) *PartitionState {
		ps := NewPartitionState(gp.hg, job.assignment, job.rng)
		runPasses(context.Background(), ps, 1, true, nil, gp.logger)
		return ps
	})
}

// calculateFitness returns (worst - mincut) + (worst - best)/3 per chromosome, their sum and prefix sums.
func calculateFitness(population []*PartitionState) ([]int, int, []int) {
	worst, best := population[0].mincut, population[0].mincut
	for _, c := range population {
		worst = util.MaxInt(worst, c.mincut)
		best = util.MinInt(best, c.mincut)
	}

	fitness := make([]int, len(population))
	cumulative := make([]int, len(population))
	total := 0
	for i, c := range population {
		fitness[i] = (worst - c.mincut) + (worst-best)/pkg.FITNESS_MARGIN_DIVISOR
		total += fitness[i]
		cumulative[i] = total
	}
	return fitness, total, cumulative
}

// selectParents draws two chromosome indices with probability proportional to fitness.
// the same index may be drawn twice. with zero total fitness both draws are uniform.
func selectParents(cumulative []int, total int, rng RandomSource) [2]int {
	if total == 0 {
		return [2]int{rng.Intn(len(cumulative)), rng.Intn(len(cumulative))}
	}

	search := func() int {
		draw := rng.Float64() * float64(total)
		return sort.Search(len(cumulative), func(i int) bool {
			return float64(cumulative[i]) > draw
		})
	}
	return [2]int{search(), search()}
}

// crossoverPoints draws k distinct cell positions in increasing order, fewer when there are less than k cells.
func crossoverPoints(n, k int, rng RandomSource) []int {
	k = util.MinInt(k, n)
	points := rng.Perm(n)[:k]
	sort.Ints(points)
	return points
}

/*
crossover. each point is the last position of a segment. segments alternate between parent a
and parent b. child1 copies them as they are, child2 flips every position taken from b.
*/
func crossover(a, b []Block, points []int) ([]Block, []Block) {
	n := len(a)
	child1 := make([]Block, n)
	child2 := make([]Block, n)

	segment := 0
	for i := 0; i < n; i++ {
		if segment%2 == 0 {
			child1[i] = a[i]
			child2[i] = a[i]
		} else {
			child1[i] = b[i]
			child2[i] = b[i].Other()
		}
		if segment < len(points) && i == points[segment] {
			segment++
		}
	}
	return child1, child2
}

// mutate flips up to n/100 random positions and then rebalances the blocks to a difference of n%2.
func mutate(child []Block, rng RandomSource) {
	n := len(child)
	for m := rng.Intn(n/pkg.MUTATION_RATE_DIVISOR + 1); m > 0; m-- {
		i := rng.Intn(n)
		child[i] = child[i].Other()
	}

	diff := blockDiff(child)
	over := BLOCK_ZERO
	if diff > 0 {
		over = BLOCK_ONE
	}
	diff = util.Abs(diff)

	tolerance := n % 2
	for _, i := range rng.Perm(n) {
		if diff <= tolerance {
			break
		}
		if child[i] == over {
			child[i] = over.Other()
			diff -= 2
		}
	}
}

func hammingDistance(a, b []Block) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

/*
replaceWithOffspring. an offspring better than the parent it is closest to (hamming distance)
takes that parent's slot, otherwise the other parent's slot if it beats that one, otherwise the
slot with the lowest fitness not yet replaced in this generation.
*/
func replaceWithOffspring(population []*PartitionState, fitness []int, parents [2]int, offspring []*PartitionState) {
	parentStates := [2]*PartitionState{population[parents[0]], population[parents[1]]}
	used := make([]bool, len(population))

	for _, child := range offspring {
		d0 := hammingDistance(parentStates[0].blockOf, child.blockOf)
		d1 := hammingDistance(parentStates[1].blockOf, child.blockOf)
		closer, farther := 1, 0
		if d0 < d1 {
			closer, farther = 0, 1
		}

		var slot int
		switch {
		case child.mincut < parentStates[closer].mincut:
			slot = parents[closer]
		case child.mincut < parentStates[farther].mincut:
			slot = parents[farther]
		default:
			slot = findInferior(fitness, used)
		}
		population[slot] = child
		used[slot] = true
	}
}

// findInferior returns the unused index with the lowest fitness, the first one on ties.
func findInferior(fitness []int, used []bool) int {
	inferior := -1
	for i, f := range fitness {
		if used[i] {
			continue
		}
		if inferior == -1 || f < fitness[inferior] {
			inferior = i
		}
	}
	util.AssertPanic(inferior != -1, "every population slot was already replaced")
	return inferior
}

// stoppingCriterion reports whether at least rate of the population has mincut best or best+1,
// together with the first chromosome holding the best mincut and the observed share.
func stoppingCriterion(population []*PartitionState, rate float64) (bool, *PartitionState, float64) {
	freq := treemap.NewWithIntComparator()
	for _, c := range population {
		count, found := freq.Get(c.mincut)
		if !found {
			count = 0
		}
		freq.Put(c.mincut, count.(int)+1)
	}

	minKey, minCount := freq.Min()
	bestCut := minKey.(int)
	near := minCount.(int)
	if next, found := freq.Get(bestCut + 1); found {
		near += next.(int)
	}

	var best *PartitionState
	for _, c := range population {
		if c.mincut == bestCut {
			best = c
			break
		}
	}

	share := float64(near) / float64(len(population))
	return share >= rate, best, share
}
