// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	readinessWaitOnce      sync.Once
	readinessWaitCollector prometheus.Histogram
)

func observeReadinessWait(elapsed time.Duration) {
	readinessWaitOnce.Do(func() {
		readinessWaitCollector = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upgrade_test_instance_readiness_wait_seconds",
			Help:    "Time spent waiting for the GitLab instance Running condition.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		})
		metrics.Registry.MustRegister(readinessWaitCollector)
	})

	readinessWaitCollector.Observe(elapsed.Seconds())
}
