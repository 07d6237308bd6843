package pairedio

import "fmt"

// ReadType identifies a mate input or an output destination.
type ReadType int

// Read types. Mate1 and Mate2 are the only valid reader roles; every read
// type is a valid writer role.
const (
	Mate1 ReadType = iota
	Mate2
	Singleton
	Collapsed
	CollapsedTruncated
	Discarded

	// NumReadTypes is the number of output batches carried by a Chunk.
	NumReadTypes = int(Discarded) + 1
)

// NumMates is the number of input batches carried by a Chunk.
const NumMates = 2

var readTypeNames = [NumReadTypes]string{
	Mate1:              "mate1",
	Mate2:              "mate2",
	Singleton:          "singleton",
	Collapsed:          "collapsed",
	CollapsedTruncated: "collapsed_truncated",
	Discarded:          "discarded",
}

// String returns the configuration name of the read type.
func (t ReadType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ReadType(%d)", int(t))
	}
	return readTypeNames[t]
}

// Valid reports whether t is a defined read type.
func (t ReadType) Valid() bool {
	return t >= Mate1 && int(t) < NumReadTypes
}

// IsMate reports whether t names one of the two input mates.
func (t ReadType) IsMate() bool {
	return t == Mate1 || t == Mate2
}

// ParseReadType parses a configuration name such as "mate1" or "discarded".
func ParseReadType(name string) (ReadType, error) {
	for i, n := range readTypeNames {
		if n == name {
			return ReadType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown read type %q", ErrInvalidRole, name)
}

// ReadTypes returns every defined read type in declaration order.
func ReadTypes() []ReadType {
	types := make([]ReadType, NumReadTypes)
	for i := range types {
		types[i] = ReadType(i)
	}
	return types
}
