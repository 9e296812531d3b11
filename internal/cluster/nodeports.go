// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"time"

	"github.com/juju/mutex/v2"
	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const nodePortMutexName = "upgrade-test-nodeport"

// AllocateNodePorts scans every NodePort service in the cluster and returns
// the first two distinct free ports in [start, end]. The pick is serialized
// through a host-local mutex so that concurrent harness runs on the same
// machine cannot hand out the same pair; runs on different machines can
// still race until the chosen Service actually exists.
func (i *Inspector) AllocateNodePorts(ctx context.Context, start, end int32) (httpPort, sshPort int32, err error) {
	releaser, err := mutex.Acquire(mutex.Spec{
		Name:    nodePortMutexName,
		Clock:   systemClock{},
		Delay:   250 * time.Millisecond,
		Timeout: 30 * time.Second,
		Cancel:  ctx.Done(),
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "acquiring node port allocation lock")
	}
	defer releaser.Release()

	used, err := i.usedNodePorts(ctx)
	if err != nil {
		return 0, 0, err
	}

	for port := start; port <= end; port++ {
		if used[port] {
			continue
		}

		if httpPort == 0 {
			httpPort = port

			continue
		}

		sshPort = port

		break
	}

	if httpPort == 0 || sshPort == 0 {
		return 0, 0, errors.Errorf("no available NodePort pair in range %d-%d", start, end)
	}

	i.Logger.Info("allocated node ports", "http", httpPort, "ssh", sshPort)

	return httpPort, sshPort, nil
}

func (i *Inspector) usedNodePorts(ctx context.Context) (map[int32]bool, error) {
	services, err := i.Clientset.CoreV1().Services(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "listing services for NodePort scan")
	}

	used := map[int32]bool{}

	for _, service := range services.Items {
		for _, port := range service.Spec.Ports {
			if port.NodePort != 0 {
				used[port.NodePort] = true
			}
		}
	}

	return used, nil
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (systemClock) Now() time.Time { return time.Now() }
