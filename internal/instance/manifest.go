// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// Values parameterizes the instance manifest template. Every field comes
// out of cluster inspection except the host path, which is freshly
// generated per run.
type Values struct {
	Namespace              string
	Name                   string
	NodeName               string
	NodeIP                 string
	GitLabPort             int32
	SSHPort                int32
	StorageClass           string
	RootPasswordSecretName string
	HostPath               string
}

// ExternalURL is the address the rendered instance will be reachable at.
func (v Values) ExternalURL() string {
	return fmt.Sprintf("http://%s:%d", v.NodeIP, v.GitLabPort)
}

// RenderManifest executes the values template file and decodes the result
// into the raw custom object submitted to the cluster. The template may
// carry operator-owned fields the harness does not model; they pass through
// untouched.
func RenderManifest(path string, values Values) (*unstructured.Unstructured, error) {
	tpl, err := template.New(filepath.Base(path)).Option("missingkey=error").ParseFiles(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest template %s", path)
	}

	var buf bytes.Buffer
	if err = tpl.Execute(&buf, values); err != nil {
		return nil, errors.Wrapf(err, "rendering manifest template %s", path)
	}

	obj := map[string]interface{}{}
	if err = yaml.Unmarshal(buf.Bytes(), &obj); err != nil {
		return nil, errors.Wrapf(err, "decoding rendered manifest %s", path)
	}

	return &unstructured.Unstructured{Object: obj}, nil
}

// RandomHostPath generates a per-run hostPath directory under base so that
// repeated instance creations on the same node never share data disks.
func RandomHostPath(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return filepath.Join(base, "gitlab-hostpath-"+suffix)
}
