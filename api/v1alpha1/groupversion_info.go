// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package v1alpha1 contains the typed view of the operator.alaudadevops.io
// v1alpha1 API group consumed by the upgrade test harness.
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion is group version used to register these objects.
	GroupVersion = schema.GroupVersion{Group: "operator.alaudadevops.io", Version: "v1alpha1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

func init() {
	SchemeBuilder.Register(&GitLabOfficial{}, &GitLabOfficialList{})
}
