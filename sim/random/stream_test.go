package random

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStream_SameSeed_SameSequence(t *testing.T) {
	a := NewStream(7)
	b := NewStream(7)
	for i := 0; i < 20; i++ {
		if x, y := a.Negexp(0.5), b.Negexp(0.5); x != y {
			t.Fatalf("draw %d: got %v and %v, want identical", i, x, y)
		}
	}
}

func TestStream_Negexp_MeanMatchesRate(t *testing.T) {
	// GIVEN a stream and rate 1/11 (mean 11)
	s := NewStream(42)
	const n = 20000

	// WHEN drawing many samples
	sum := 0.0
	for i := 0; i < n; i++ {
		v := s.Negexp(1.0 / 11)
		if v < 0 {
			t.Fatalf("negative sample %v", v)
		}
		sum += v
	}

	// THEN the sample mean is close to 11
	assert.InDelta(t, 11.0, sum/n, 0.5)
}

func TestStream_Uniform_WithinBounds(t *testing.T) {
	s := NewStream(1)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(2, 5)
		if v < 2 || v >= 5 {
			t.Fatalf("Uniform(2,5) = %v out of range", v)
		}
	}
}

func TestStream_Normal_MeanAndSpread(t *testing.T) {
	s := NewStream(3)
	const n = 20000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := s.Normal(5, 0.5)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 5.0, mean, 0.05)
	assert.InDelta(t, 0.5, std, 0.05)
}

func TestStream_Poisson(t *testing.T) {
	s := NewStream(9)
	assert.Equal(t, 0, s.Poisson(0))

	const n = 20000
	for _, lambda := range []float64{3, 50} {
		sum := 0
		for i := 0; i < n; i++ {
			k := s.Poisson(lambda)
			assert.GreaterOrEqual(t, k, 0)
			sum += k
		}
		assert.InDelta(t, lambda, float64(sum)/n, lambda*0.05, "lambda=%v", lambda)
	}
}

func TestStream_Draw_Extremes(t *testing.T) {
	s := NewStream(11)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Draw(0))
		assert.True(t, s.Draw(1))
	}
}

func TestStream_RandInt_Inclusive(t *testing.T) {
	s := NewStream(5)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := s.RandInt(1, 3)
		assert.True(t, v >= 1 && v <= 3, "RandInt(1,3) = %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}

func TestStream_InvalidArguments_Panic(t *testing.T) {
	s := NewStream(1)
	assert.Panics(t, func() { s.Negexp(0) })
	assert.Panics(t, func() { s.Uniform(3, 1) })
	assert.Panics(t, func() { s.RandInt(3, 1) })
}
