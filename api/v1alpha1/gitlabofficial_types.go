// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GitLabOfficial is the custom resource managed by the GitLab operator.
// The harness never owns this object: the spec is submitted once (and its
// version field replaced on upgrade), the status is written by the operator
// controller. Only the fields the harness reads or templates are modeled
// here; create and replace always go through the unstructured form so that
// operator-owned spec fields survive a full PUT untouched.
type GitLabOfficial struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   GitLabOfficialSpec   `json:"spec,omitempty"`
	Status GitLabOfficialStatus `json:"status,omitempty"`
}

// GitLabOfficialSpec carries the instance parameters the harness fills in
// from cluster inspection: node placement, NodePort pair, storage class,
// host path directory, root password secret, and the running version.
type GitLabOfficialSpec struct {
	// Version is the GitLab release to run. Replacing it triggers an
	// operator-driven upgrade.
	Version string `json:"version,omitempty"`

	// ExternalURL is where the instance is reachable from outside the
	// cluster, typically http://<node-ip>:<http-nodeport>.
	ExternalURL string `json:"externalURL,omitempty"`

	// NodeName pins the instance to a single node (hostPath storage).
	NodeName string `json:"nodeName,omitempty"`

	// Service declares the NodePort pair allocated for the instance.
	Service ServiceSpec `json:"service,omitempty"`

	// Persistence declares where instance data lives.
	Persistence PersistenceSpec `json:"persistence,omitempty"`

	// RootPasswordSecret names the Secret holding the initial root
	// password under the "password" key.
	RootPasswordSecret string `json:"rootPasswordSecret,omitempty"`
}

// ServiceSpec declares the externally reachable ports of the instance.
type ServiceSpec struct {
	HTTPNodePort int32 `json:"httpNodePort,omitempty"`
	SSHNodePort  int32 `json:"sshNodePort,omitempty"`
}

// PersistenceSpec declares the storage backing the instance.
type PersistenceSpec struct {
	StorageClass string `json:"storageClass,omitempty"`
	HostPath     string `json:"hostPath,omitempty"`
}

// GitLabOfficialStatus is written by the operator controller.
type GitLabOfficialStatus struct {
	// Conditions is the ordered condition list reported by the operator.
	// Status is a plain boolean on the wire, not the usual
	// metav1.ConditionStatus string.
	Conditions []Condition `json:"conditions,omitempty"`
}

// Condition is a single entry of the operator-reported condition list.
type Condition struct {
	Type    string `json:"type"`
	Status  bool   `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// GitLabOfficialList contains a list of GitLabOfficial.
type GitLabOfficialList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []GitLabOfficial `json:"items"`
}
