package random

import (
	"hash/fnv"
	"math/rand"
)

// Partitioned hands out deterministic, isolated streams per model
// subsystem, so adding draws to one entity never shifts the variates of
// another.
//
// Derivation: masterSeed XOR fnv1a64(subsystem name).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type Partitioned struct {
	seed    int64
	streams map[string]*Stream
}

// NewPartitioned creates a Partitioned from a master seed.
func NewPartitioned(seed int64) *Partitioned {
	return &Partitioned{
		seed:    seed,
		streams: make(map[string]*Stream),
	}
}

// ForSubsystem returns the stream of the named subsystem.
// The same name always returns the same *Stream (cached). Never returns nil.
func (p *Partitioned) ForSubsystem(name string) *Stream {
	if st, ok := p.streams[name]; ok {
		return st
	}
	st := FromRand(rand.New(rand.NewSource(p.seed ^ fnv1a64(name))))
	p.streams[name] = st
	return st
}

// Seed returns the master seed.
func (p *Partitioned) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
