package pairedio

// Chunk is a batch of raw lines moving through the pipeline.
//
// A chunk is owned by exactly one stage at a time. Batches are cleared by
// reslicing to zero length so their storage is reused by the next batch.
type Chunk struct {
	// Offset is the 1-based line number of the first line in the chunk.
	Offset int

	// Mates holds the lines read from the mate 1 and mate 2 inputs,
	// indexed by Mate1 and Mate2.
	Mates [][]string

	// Output holds the lines to write, indexed by ReadType.
	Output [][]string
}

// NewChunk returns an empty chunk with a batch slot for every mate and
// output read type.
func NewChunk() *Chunk {
	return &Chunk{
		Mates:  make([][]string, NumMates),
		Output: make([][]string, NumReadTypes),
	}
}

// Terminal reports whether every mate batch is empty, which only happens once
// the readers have reached the end of their inputs.
func (c *Chunk) Terminal() bool {
	for _, lines := range c.Mates {
		if len(lines) > 0 {
			return false
		}
	}
	return true
}

// Reset empties all batches and clears the offset, keeping batch storage.
func (c *Chunk) Reset() {
	c.ensure()
	c.Offset = 0
	for i := range c.Mates {
		c.Mates[i] = clearLines(c.Mates[i])
	}
	for i := range c.Output {
		c.Output[i] = clearLines(c.Output[i])
	}
}

// ensure grows the batch slices of a zero-value chunk.
func (c *Chunk) ensure() {
	if len(c.Mates) < NumMates {
		mates := make([][]string, NumMates)
		copy(mates, c.Mates)
		c.Mates = mates
	}
	if len(c.Output) < NumReadTypes {
		output := make([][]string, NumReadTypes)
		copy(output, c.Output)
		c.Output = output
	}
}

// clearLines drops the string references held by lines and returns it with
// zero length and unchanged capacity.
func clearLines(lines []string) []string {
	clear(lines)
	return lines[:0]
}
