// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package cluster inspects the target Kubernetes cluster to parameterize a
// GitLab instance: schedulable nodes, free NodePorts, the storage class, and
// the root password Secret.
package cluster

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NodePort range boundaries of a stock kube-apiserver.
const (
	NodePortRangeStart int32 = 30000
	NodePortRangeEnd   int32 = 32767
)

// Node is a schedulable placement candidate for the instance.
type Node struct {
	Name   string
	IP     string
	Labels map[string]string
}

// Inspector reads cluster state through a typed clientset.
type Inspector struct {
	Clientset kubernetes.Interface
	Logger    logr.Logger
}

// NewInspector returns an Inspector bound to the given clientset.
func NewInspector(clientset kubernetes.Interface, logger logr.Logger) *Inspector {
	return &Inspector{Clientset: clientset, Logger: logger.WithName("cluster-inspector")}
}

// ReadyNodes returns every node whose Ready condition is True, together with
// its InternalIP. Nodes without an InternalIP are skipped: the instance URL
// is built from the node address.
func (i *Inspector) ReadyNodes(ctx context.Context) ([]Node, error) {
	nodeList, err := i.Clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "listing cluster nodes")
	}

	var nodes []Node

	for _, node := range nodeList.Items {
		if !isNodeReady(node) {
			continue
		}

		ip := internalIP(node)
		if ip == "" {
			continue
		}

		nodes = append(nodes, Node{
			Name:   node.Name,
			IP:     ip,
			Labels: node.Labels,
		})
	}

	return nodes, nil
}

// FirstStorageClass returns the name of the first storage class in the
// cluster. No filtering on provisioner or default-class annotation: any
// class that can bind a volume is good enough for a throwaway instance.
func (i *Inspector) FirstStorageClass(ctx context.Context) (string, error) {
	classes, err := i.Clientset.StorageV1().StorageClasses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", errors.Wrap(err, "listing storage classes")
	}

	if len(classes.Items) == 0 {
		return "", errors.New("no storage class found in the cluster")
	}

	return classes.Items[0].Name, nil
}

// EnsureNamespace creates the namespace if it does not exist yet.
func (i *Inspector) EnsureNamespace(ctx context.Context, name string) error {
	_, err := i.Clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return nil
	}

	if !apierrors.IsNotFound(err) {
		return errors.Wrapf(err, "retrieving namespace %s", name)
	}

	_, err = i.Clientset.CoreV1().Namespaces().Create(ctx, &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return errors.Wrapf(err, "creating namespace %s", name)
	}

	i.Logger.Info("namespace ensured", "namespace", name)

	return nil
}

func isNodeReady(node corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			return condition.Status == corev1.ConditionTrue
		}
	}

	return false
}

func internalIP(node corev1.Node) string {
	for _, address := range node.Status.Addresses {
		if address.Type == corev1.NodeInternalIP {
			return address.Address
		}
	}

	return ""
}
