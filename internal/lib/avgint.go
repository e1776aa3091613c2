package lib

import "math"

// AverageInt64 computes a running mean, min/max, and variance over a
// stream of int64 samples, without retaining the samples themselves.
// Used by Heap.Stats to summarize allocation sizes.
type AverageInt64 struct {
	n      int64
	minval int64
	maxval int64
	sum    int64
	sumsq  float64
	init   bool
}

// Add a sample.
func (av *AverageInt64) Add(sample int64) {
	av.n++
	av.sum += sample
	f := float64(sample)
	av.sumsq += f * f
	if !av.init || sample < av.minval {
		av.minval = sample
		av.init = true
	}
	if av.maxval < sample {
		av.maxval = sample
	}
}

// Min sample seen so far.
func (av *AverageInt64) Min() int64 { return av.minval }

// Max sample seen so far.
func (av *AverageInt64) Max() int64 { return av.maxval }

// Samples is the number of samples added so far.
func (av *AverageInt64) Samples() int64 { return av.n }

// Sum of all samples added so far.
func (av *AverageInt64) Sum() int64 { return av.sum }

// Mean of all samples added so far.
func (av *AverageInt64) Mean() int64 {
	if av.n == 0 {
		return 0
	}
	return int64(float64(av.sum) / float64(av.n))
}

// Variance of all samples added so far.
func (av *AverageInt64) Variance() float64 {
	if av.n == 0 {
		return 0
	}
	nf, meanf := float64(av.n), float64(av.Mean())
	return (av.sumsq / nf) - (meanf * meanf)
}

// SD is the standard deviation of all samples added so far.
func (av *AverageInt64) SD() float64 {
	if av.n == 0 {
		return 0
	}
	return math.Sqrt(av.Variance())
}
