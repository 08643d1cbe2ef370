// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"sync"

	"github.com/segmentio/go-hll"
	"github.com/zeebo/xxh3"
)

var (
	initStatsOnce sync.Once
	initStatsErr  error
)

// InitStats sets the HLL defaults so that they don't have to be specified for every new HLL.
// Safe to call more than once.
func InitStats() error {
	initStatsOnce.Do(func() {
		initStatsErr = hll.Defaults(hll.Settings{
			Log2m:             14, // chosen for < 1% error rate (~0.81%)
			Regwidth:          5,
			ExplicitThreshold: 0,
			SparseEnabled:     true,
		})
	})
	return initStatsErr
}

// resourceEstimator estimates the number of distinct resources seen in a group
type resourceEstimator struct {
	hll *hll.Hll
}

func newResourceEstimator() *resourceEstimator {
	if err := InitStats(); err != nil {
		// Without defaults the HLL can't be used, report no estimate
		return &resourceEstimator{}
	}
	return &resourceEstimator{hll: &hll.Hll{}}
}

func (e *resourceEstimator) add(resource string) {
	if e.hll == nil || resource == "" {
		return
	}
	e.hll.AddRaw(xxh3.HashString(resource))
}

func (e *resourceEstimator) count() uint64 {
	if e.hll == nil {
		return 0
	}
	return e.hll.Cardinality()
}
