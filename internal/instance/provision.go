// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/types"

	"github.com/AlaudaDevops/upgrade-test/api/v1alpha1"
	"github.com/AlaudaDevops/upgrade-test/internal/cluster"
)

// ClusterInspector is the slice of cluster inspection the provisioner needs.
type ClusterInspector interface {
	ReadyNodes(ctx context.Context) ([]cluster.Node, error)
	AllocateNodePorts(ctx context.Context, start, end int32) (int32, int32, error)
	FirstStorageClass(ctx context.Context) (string, error)
	RecreateRootPasswordSecret(ctx context.Context, namespace, name, password string) error
}

// ProvisionRequest carries everything needed to stand up an instance.
type ProvisionRequest struct {
	Namespace    string
	Name         string
	ValuesFile   string
	RootPassword string
}

// Provisioner assembles an instance spec from cluster inspection and hands
// it to the lifecycle.
type Provisioner struct {
	Inspector ClusterInspector
	Lifecycle *Lifecycle
	Logger    logr.Logger

	// HostPathBase is where per-run data directories are generated.
	HostPathBase string
}

// NewProvisioner wires an inspector and a lifecycle together.
func NewProvisioner(inspector ClusterInspector, lifecycle *Lifecycle, logger logr.Logger) *Provisioner {
	return &Provisioner{
		Inspector:    inspector,
		Lifecycle:    lifecycle,
		Logger:       logger.WithName("provisioner"),
		HostPathBase: "/tmp",
	}
}

// Provision creates the instance if it does not exist and waits for it to
// reach Running. An already existing instance skips straight to the wait, so
// re-running the harness against a half-created environment converges.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) (*v1alpha1.GitLabOfficial, error) {
	key := types.NamespacedName{Namespace: req.Namespace, Name: req.Name}

	existing, err := p.Lifecycle.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		p.Logger.Info("GitLab instance already exists, skipping creation", "instance", key.String())

		return p.Lifecycle.WaitUntilRunning(ctx, key)
	}

	nodes, err := p.Inspector.ReadyNodes(ctx)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, errors.New("no ready node with an internal IP available")
	}

	// First ready node wins; there is nothing to rank a throwaway
	// instance's placement by.
	node := nodes[0]

	storageClass, err := p.Inspector.FirstStorageClass(ctx)
	if err != nil {
		return nil, err
	}

	httpPort, sshPort, err := p.Inspector.AllocateNodePorts(ctx, cluster.NodePortRangeStart, cluster.NodePortRangeEnd)
	if err != nil {
		return nil, err
	}

	if err = p.Inspector.RecreateRootPasswordSecret(ctx, req.Namespace, cluster.RootPasswordSecretName, req.RootPassword); err != nil {
		return nil, err
	}

	values := Values{
		Namespace:              req.Namespace,
		Name:                   req.Name,
		NodeName:               node.Name,
		NodeIP:                 node.IP,
		GitLabPort:             httpPort,
		SSHPort:                sshPort,
		StorageClass:           storageClass,
		RootPasswordSecretName: cluster.RootPasswordSecretName,
		HostPath:               RandomHostPath(p.HostPathBase),
	}

	p.Logger.Info("provisioning GitLab instance",
		"instance", key.String(),
		"node", node.Name,
		"nodeIP", node.IP,
		"httpPort", httpPort,
		"sshPort", sshPort,
		"storageClass", storageClass,
		"externalURL", values.ExternalURL(),
	)

	manifest, err := RenderManifest(req.ValuesFile, values)
	if err != nil {
		return nil, err
	}

	if err = p.Lifecycle.Create(ctx, manifest); err != nil {
		return nil, err
	}

	return p.Lifecycle.WaitUntilRunning(ctx, key)
}
