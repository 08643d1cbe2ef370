// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Statistics describes the durations of a group of invocations. All times are in milliseconds.
type Statistics struct {
	DataPoints      int    `json:"dataPoints" cbor:"data_points"`
	Mean            int64  `json:"mean" cbor:"mean"`
	Median          int64  `json:"median" cbor:"median"`
	Variance        *int64 `json:"variance,omitempty" cbor:"variance,omitempty"` // nil with a single data point
	Range           Range  `json:"range" cbor:"range"`
	TotalActiveTime int64  `json:"totalActiveTime" cbor:"total_active_time"`
	Open            int    `json:"open,omitempty" cbor:"open,omitempty"` // invocations that never ended, excluded above
	UniqueResources uint64 `json:"uniqueResources" cbor:"unique_resources"` // HLL estimate
}

// ComputeStatistics computes the statistics of a group of records. Records that have not ended are
// counted in Open and otherwise ignored.
func ComputeStatistics(records []Record) Statistics {
	var stats Statistics
	var durations []int64

	estimator := newResourceEstimator()

	for _, rec := range records {
		if !rec.Done {
			stats.Open++
			continue
		}
		durations = append(durations, rec.Duration())
		estimator.add(rec.Resource)
	}

	stats.DataPoints = len(durations)
	stats.UniqueResources = estimator.count()
	if len(durations) == 0 {
		return stats
	}

	stats.Mean = roundHalfUp(mean(durations))
	stats.Median = median(durations)
	stats.Range = durationRange(durations)
	if len(durations) > 1 {
		v := roundHalfUp(variance(durations, stats.Mean))
		stats.Variance = &v
	}
	stats.TotalActiveTime = TotalActiveTime(records)

	return stats
}

// TotalActiveTime is the time during which at least one of the completed records was running.
// Overlapping invocations are counted once.
func TotalActiveTime(records []Record) int64 {
	var ranges []Range
	for _, rec := range records {
		if rec.Done {
			ranges = append(ranges, rec.Range())
		}
	}
	return TotalSpan(MergeRanges(ranges))
}

// roundHalfUp rounds .5 towards positive infinity
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

func mean(xs []int64) float64 {
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// median picks the element at index n/2 after sorting the decimal representations lexically,
// so [1, 2, 10] sorts as [1, 10, 2] and the median is 10. Even sized groups get the upper middle
// element.
func median(xs []int64) int64 {
	sorted := slices.Clone(xs)
	slices.SortStableFunc(sorted, func(a, b int64) int {
		return strings.Compare(strconv.FormatInt(a, 10), strconv.FormatInt(b, 10))
	})
	return sorted[len(sorted)/2]
}

// variance is the sample variance around the given (rounded) mean
func variance(xs []int64, mean int64) float64 {
	var sum float64
	for _, x := range xs {
		d := float64(x - mean)
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

func durationRange(xs []int64) Range {
	r := Range{Start: math.MaxInt64, End: math.MinInt64}
	for _, x := range xs {
		r.Start = min(r.Start, x)
		r.End = max(r.End, x)
	}
	return r
}
