package util

import (
	"math"
	"sync"
	"testing"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if stats.Mean != 5 {
		t.Errorf("Expected mean 5, got %f", stats.Mean)
	}
	if stats.StdDeviation != 2 {
		t.Errorf("Expected std deviation 2, got %f", stats.StdDeviation)
	}
	if stats.Min != 2 || stats.Max != 9 {
		t.Errorf("Expected min 2 and max 9, got %f and %f", stats.Min, stats.Max)
	}
	if math.Abs(stats.MinMaxRatio-2.0/9.0) > 1e-9 {
		t.Errorf("Unexpected min/max ratio %f", stats.MinMaxRatio)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("Expected zero stats for empty input, got %+v", empty)
	}
}

func TestNewDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{3, 3, 3, 3})
	if even.DistributionQuality != 1 {
		t.Errorf("Expected perfect quality for an even spread, got %f", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{1, 1, 1, 50})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("Expected skewed spread to rate worse than an even one (%f >= %f)",
			skewed.DistributionQuality, even.DistributionQuality)
	}

	if none := NewDistributionStats(nil); none.DistributionQuality != 0 {
		t.Errorf("Expected zero quality without samples, got %f", none.DistributionQuality)
	}
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()

	if h.Average() != 0 || h.Percentile(50) != 0 {
		t.Errorf("Expected empty histogram to report zeros")
	}

	for i := 0; i < 99; i++ {
		h.AddSample(10) // first bucket
	}
	h.AddSample(2000) // 1024 < x <= 4096

	if h.Count() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.Count())
	}
	if h.Sum() != 99*10+2000 {
		t.Errorf("Unexpected sum %d", h.Sum())
	}
	if h.Percentile(50) != 8 {
		t.Errorf("Expected median estimate 8, got %d", h.Percentile(50))
	}
	if h.Percentile(100) != (1024+4096)/2 {
		t.Errorf("Expected max estimate %d, got %d", (1024+4096)/2, h.Percentile(100))
	}

	summary := h.Summary()
	if summary.Count != 100 || summary.Average != h.Average() || summary.Median != 8 {
		t.Errorf("Unexpected summary %+v", summary)
	}

	h.AddSample(1 << 40)
	if h.Percentile(100) != sizeBoundaries[len(sizeBoundaries)-1]*2 {
		t.Errorf("Expected samples beyond the last boundary to land in the overflow bucket")
	}

	h.Reset()
	if h.Count() != 0 || h.Sum() != 0 {
		t.Errorf("Expected empty histogram after reset")
	}
}

func TestSizeHistogramConcurrent(t *testing.T) {
	h := NewSizeHistogram()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h.AddSample(int64(i))
			}
		}()
	}
	wg.Wait()

	if h.Count() != 8000 {
		t.Errorf("Expected 8000 samples, got %d", h.Count())
	}
}
