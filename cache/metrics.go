// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"github.com/luxfi/metric"
)

type cacheMetrics struct {
	hits, misses, traversals, flushes metric.Counter
}

func newCacheMetrics() *cacheMetrics {
	return &cacheMetrics{
		hits: metric.NewCounter(metric.CounterOpts{
			Name: "module_cache_hits",
			Help: "Number of module reads served from the cross-block cache",
		}),
		misses: metric.NewCounter(metric.CounterOpts{
			Name: "module_cache_misses",
			Help: "Number of module reads that missed the cross-block cache",
		}),
		traversals: metric.NewCounter(metric.CounterOpts{
			Name: "module_cache_traversals",
			Help: "Number of dependency-graph verification walks",
		}),
		flushes: metric.NewCounter(metric.CounterOpts{
			Name: "module_cache_flushes",
			Help: "Number of times the cross-block cache was cleared",
		}),
	}
}
