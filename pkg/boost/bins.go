package boost

import (
	"math"
	"slices"
	"sort"
)

const maxBinLimit = math.MaxUint16

// binMapper buckets the values of one feature. Value v falls into the first
// bin b with v <= upper[b]; the last bound is +Inf.
type binMapper struct {
	upper []float64
}

func newBinMapper(values []float64, maxBin int) binMapper {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	distinct := make([]float64, 0, len(sorted))
	counts := make([]int, 0, len(sorted))
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			counts[len(counts)-1]++
			continue
		}
		distinct = append(distinct, v)
		counts = append(counts, 1)
	}

	upper := make([]float64, 0, min(len(distinct), maxBin))
	if len(distinct) <= maxBin {
		for i := 0; i+1 < len(distinct); i++ {
			upper = append(upper, midpoint(distinct[i], distinct[i+1]))
		}
	} else {
		// equal-frequency cuts placed between distinct values
		perBin := float64(len(sorted)) / float64(maxBin)
		cum := 0
		next := perBin
		for i := 0; i+1 < len(distinct) && len(upper) < maxBin-1; i++ {
			cum += counts[i]
			if float64(cum) >= next {
				upper = append(upper, midpoint(distinct[i], distinct[i+1]))
				for next <= float64(cum) {
					next += perBin
				}
			}
		}
	}
	upper = append(upper, math.Inf(1))
	return binMapper{upper: upper}
}

func (m binMapper) numBins() int {
	return len(m.upper)
}

func (m binMapper) bin(v float64) int {
	return sort.SearchFloat64s(m.upper, v)
}

func midpoint(a, b float64) float64 {
	mid := a + (b-a)/2
	// guard against rounding onto the upper value
	if mid >= b {
		return a
	}
	return mid
}

// binnedData is the column-major bin index of every training value.
type binnedData struct {
	mappers []binMapper
	bins    [][]uint16
}

func newBinnedData(X [][]float64, numFeatures, maxBin int) *binnedData {
	d := &binnedData{
		mappers: make([]binMapper, numFeatures),
		bins:    make([][]uint16, numFeatures),
	}
	col := make([]float64, len(X))
	for f := 0; f < numFeatures; f++ {
		for i, row := range X {
			col[i] = row[f]
		}
		m := newBinMapper(col, maxBin)
		b := make([]uint16, len(X))
		for i, v := range col {
			b[i] = uint16(m.bin(v))
		}
		d.mappers[f] = m
		d.bins[f] = b
	}
	return d
}
