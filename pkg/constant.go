package pkg

const (
	DEFAULT_MAX_ITERATIONS   = 6 // kl/fm outer passes
	DEFAULT_POPULATION_SIZE  = 50
	DEFAULT_CROSSOVER_POINTS = 5
	DEFAULT_CONVERGENCE_RATE = 0.8 // share of the population within one cut of the best
	MUTATION_RATE_DIVISOR    = 100 // at most n/100 random flips per offspring
	FITNESS_MARGIN_DIVISOR   = 3
)

// limits on a single api request
const (
	DEFAULT_MAX_CELLS           = 1_000_000
	DEFAULT_MAX_PINS            = 10_000_000
	DEFAULT_API_MAX_GENERATIONS = 500
)

const (
	DEBUG = false
)

type Algorithm string

const (
	ALGORITHM_FM      Algorithm = "fm"
	ALGORITHM_GENETIC Algorithm = "genetic"
)
