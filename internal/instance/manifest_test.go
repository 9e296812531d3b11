// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func testValues() Values {
	return Values{
		Namespace:              "testing-gitlab-upgrade",
		Name:                   "upgrade-test-gitlab",
		NodeName:               "worker-0",
		NodeIP:                 "10.0.0.10",
		GitLabPort:             30080,
		SSHPort:                30022,
		StorageClass:           "local-path",
		RootPasswordSecretName: "gitlab-root-password",
		HostPath:               "/tmp/gitlab-hostpath-abc12345",
	}
}

func TestRenderManifest(t *testing.T) {
	obj, err := RenderManifest("testdata/gitlab-values.yaml", testValues())
	require.NoError(t, err)

	assert.Equal(t, "operator.alaudadevops.io/v1alpha1", obj.GetAPIVersion())
	assert.Equal(t, "GitLabOfficial", obj.GetKind())
	assert.Equal(t, "upgrade-test-gitlab", obj.GetName())
	assert.Equal(t, "testing-gitlab-upgrade", obj.GetNamespace())

	externalURL, _, err := unstructured.NestedString(obj.Object, "spec", "externalURL")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.10:30080", externalURL)

	httpPort, _, err := unstructured.NestedFloat64(obj.Object, "spec", "service", "httpNodePort")
	require.NoError(t, err)
	assert.Equal(t, float64(30080), httpPort)

	// Operator-owned fields the harness does not model survive rendering.
	_, found, err := unstructured.NestedMap(obj.Object, "spec", "helmValues")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRenderManifestFailsOnMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: {{ .Bogus }}\n"), 0o644))

	_, err := RenderManifest(path, testValues())
	require.Error(t, err)
}

func TestRenderManifestFailsOnMissingFile(t *testing.T) {
	_, err := RenderManifest(filepath.Join(t.TempDir(), "absent.yaml"), testValues())
	require.Error(t, err)
}

func TestExternalURL(t *testing.T) {
	assert.Equal(t, "http://10.0.0.10:30080", testValues().ExternalURL())
}

func TestRandomHostPath(t *testing.T) {
	first := RandomHostPath("/tmp")
	second := RandomHostPath("/tmp")

	assert.True(t, strings.HasPrefix(first, "/tmp/gitlab-hostpath-"))
	assert.Len(t, filepath.Base(first), len("gitlab-hostpath-")+8)
	assert.NotEqual(t, first, second)
}
