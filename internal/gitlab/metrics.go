// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	importWaitOnce      sync.Once
	importWaitCollector prometheus.Histogram
)

func observeImportWait(elapsed time.Duration) {
	importWaitOnce.Do(func() {
		importWaitCollector = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upgrade_test_project_import_wait_seconds",
			Help:    "Time spent waiting for a file-based project import to finish.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		})
		metrics.Registry.MustRegister(importWaitCollector)
	})

	importWaitCollector.Observe(elapsed.Seconds())
}
