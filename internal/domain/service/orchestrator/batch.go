package orchestrator

const (
	InitialBatchSize = 4
	MinBatchSize     = 2
	MaxBatchSize     = 8

	downshiftAfter = 2
	upshiftAfter   = 3
)

// BatchSizer adapts the wave size to the error rate of previous waves.
type BatchSizer struct {
	size   int
	bad    int
	stable int
}

func NewBatchSizer() *BatchSizer {
	return &BatchSizer{size: InitialBatchSize}
}

func (b *BatchSizer) Size() int {
	return b.size
}

// Observe records one finished wave. A wave is bad when errors outnumber
// successes and stable when it had no errors at all.
func (b *BatchSizer) Observe(successes, errors int) {
	switch {
	case errors > successes:
		b.stable = 0
		b.bad++
		if b.bad >= downshiftAfter && b.size > MinBatchSize {
			b.size--
		}
	case errors == 0:
		b.bad = 0
		b.stable++
		if b.stable >= upshiftAfter && b.size < MaxBatchSize {
			b.size++
			b.stable = 0
		}
	default:
		b.bad = 0
		b.stable = 0
	}
}
