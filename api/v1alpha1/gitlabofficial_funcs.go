// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

const (
	// ConditionTypeRunning is the condition type the operator sets once the
	// instance is serving.
	ConditionTypeRunning = "Running"

	// ReasonRunningSuccessful is the reason accompanying a settled Running
	// condition.
	ReasonRunningSuccessful = "RunningSuccessful"
)

// GetCondition returns the first condition with the given type, or nil.
func (g *GitLabOfficial) GetCondition(conditionType string) *Condition {
	for i := range g.Status.Conditions {
		if g.Status.Conditions[i].Type == conditionType {
			return &g.Status.Conditions[i]
		}
	}

	return nil
}

// IsRunning reports whether the operator has settled the instance into the
// Running/RunningSuccessful state.
func (g *GitLabOfficial) IsRunning() bool {
	for _, condition := range g.Status.Conditions {
		if condition.Type == ConditionTypeRunning && condition.Status && condition.Reason == ReasonRunningSuccessful {
			return true
		}
	}

	return false
}

// HasStatus reports whether the operator has reported any conditions yet.
// A freshly submitted resource has no status block at all.
func (g *GitLabOfficial) HasStatus() bool {
	return len(g.Status.Conditions) > 0
}

// FromUnstructured converts the raw custom object into the typed view.
// Unknown spec fields are dropped by the conversion, which is why the typed
// form is never written back to the cluster.
func FromUnstructured(u *unstructured.Unstructured) (*GitLabOfficial, error) {
	out := &GitLabOfficial{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, out); err != nil {
		return nil, err
	}

	return out, nil
}
