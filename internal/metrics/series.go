package metrics

import "math"

const (
	// WindowSeconds bounds the history kept by a Series.
	WindowSeconds = 30.0
	// ScaleSamples is how many recent samples drive the y-axis.
	ScaleSamples = 20
	// YMajorTick and XMajorTick are the graph tick spacings.
	YMajorTick = 5.0
	XMajorTick = 10.0
)

// Sample is one point of a task's rolling series.
type Sample struct {
	T           float64
	Errors      float64
	Corrections float64
}

// Series holds the errors/corrections history of one task.
type Series struct {
	samples []Sample
}

// Append adds a sample and evicts samples older than WindowSeconds relative
// to the newest one.
func (s *Series) Append(t, errors, corrections float64) {
	if n := len(s.samples); n > 0 && t < s.samples[n-1].T {
		t = s.samples[n-1].T
	}
	s.samples = append(s.samples, Sample{T: t, Errors: errors, Corrections: corrections})
	newest := s.samples[len(s.samples)-1].T
	drop := 0
	for drop < len(s.samples) && newest-s.samples[drop].T > WindowSeconds {
		drop++
	}
	if drop > 0 {
		s.samples = append(s.samples[:0], s.samples[drop:]...)
	}
}

// Samples returns a copy of the retained samples.
func (s *Series) Samples() []Sample {
	return append([]Sample(nil), s.samples...)
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.samples)
}

// Reset clears the series.
func (s *Series) Reset() {
	s.samples = nil
}

// Errors returns the error values in order.
func (s *Series) Errors() []float64 {
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.Errors
	}
	return out
}

// Corrections returns the correction values in order.
func (s *Series) Corrections() []float64 {
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.Corrections
	}
	return out
}

// Axes describes the visible graph area.
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64
	XTick      float64
	YTick      float64
}

// YBounds computes the y-axis from the last ScaleSamples samples of both
// lines. An empty series yields 0..10.
func (s *Series) YBounds() (lo, hi float64) {
	if len(s.samples) == 0 {
		return 0, 10
	}
	start := len(s.samples) - ScaleSamples
	if start < 0 {
		start = 0
	}
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, smp := range s.samples[start:] {
		minVal = math.Min(minVal, math.Min(smp.Errors, smp.Corrections))
		maxVal = math.Max(maxVal, math.Max(smp.Errors, smp.Corrections))
	}
	lo = math.Floor(minVal/YMajorTick) * YMajorTick
	if lo < 0 {
		lo = 0
	}
	hi = (math.Floor(maxVal/YMajorTick) + 1) * YMajorTick
	return lo, hi
}

// XWindow returns the visible time range for the given elapsed seconds.
func XWindow(elapsed float64) (lo, hi float64) {
	lo = math.Max(0, elapsed-WindowSeconds)
	return lo, lo + WindowSeconds
}

// Axes combines the y bounds of the series with the x window at elapsed.
func (s *Series) Axes(elapsed float64) Axes {
	ylo, yhi := s.YBounds()
	xlo, xhi := XWindow(elapsed)
	return Axes{XMin: xlo, XMax: xhi, YMin: ylo, YMax: yhi, XTick: XMajorTick, YTick: YMajorTick}
}
