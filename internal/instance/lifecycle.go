// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package instance drives the GitLabOfficial custom resource through its
// lifecycle: submit, wait for the Running condition, trigger an upgrade by
// replacing the spec version, and wait again.
package instance

import (
	"context"
	"time"

	"github.com/blang/semver"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/AlaudaDevops/upgrade-test/api/v1alpha1"
)

const (
	// DefaultPollInterval between readiness checks.
	DefaultPollInterval = 5 * time.Second

	// DefaultReadyTimeout bounds a single wait for the Running condition.
	DefaultReadyTimeout = 15 * time.Minute

	// DefaultUpgradeSettle is how long the operator gets to pick up a spec
	// replacement before the harness starts polling for readiness again.
	DefaultUpgradeSettle = 5 * time.Second
)

// Lifecycle owns every interaction with the GitLabOfficial resource.
type Lifecycle struct {
	Client client.Client
	Logger logr.Logger

	PollInterval  time.Duration
	ReadyTimeout  time.Duration
	UpgradeSettle time.Duration
}

// NewLifecycle returns a Lifecycle with the default timing parameters.
func NewLifecycle(c client.Client, logger logr.Logger) *Lifecycle {
	return &Lifecycle{
		Client:        c,
		Logger:        logger.WithName("instance-lifecycle"),
		PollInterval:  DefaultPollInterval,
		ReadyTimeout:  DefaultReadyTimeout,
		UpgradeSettle: DefaultUpgradeSettle,
	}
}

// Get fetches the raw custom object, mapping not-found to (nil, nil) so
// callers can use absence as a control signal.
func (l *Lifecycle) Get(ctx context.Context, key types.NamespacedName) (*unstructured.Unstructured, error) {
	obj := newUnstructured()
	if err := l.Client.Get(ctx, key, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "retrieving GitLab instance %s", key)
	}

	return obj, nil
}

// Create submits the rendered custom object.
func (l *Lifecycle) Create(ctx context.Context, obj *unstructured.Unstructured) error {
	if err := l.Client.Create(ctx, obj); err != nil {
		return errors.Wrapf(err, "creating GitLab instance %s/%s", obj.GetNamespace(), obj.GetName())
	}

	l.Logger.Info("GitLab instance submitted", "namespace", obj.GetNamespace(), "name", obj.GetName())

	return nil
}

// WaitUntilRunning polls the resource at the configured interval until the
// operator reports Running/RunningSuccessful, the timeout elapses, or ctx is
// canceled. A resource with no status block yet counts as not-ready and the
// poll continues. The timeout error carries the last observed conditions.
func (l *Lifecycle) WaitUntilRunning(ctx context.Context, key types.NamespacedName) (*v1alpha1.GitLabOfficial, error) {
	l.Logger.Info("waiting for GitLab instance to be running", "instance", key.String(), "timeout", l.ReadyTimeout)

	started := time.Now()

	var (
		running        *v1alpha1.GitLabOfficial
		lastConditions []v1alpha1.Condition
	)

	err := wait.PollUntilContextTimeout(ctx, l.PollInterval, l.ReadyTimeout, true, func(ctx context.Context) (bool, error) {
		obj, err := l.Get(ctx, key)
		if err != nil {
			return false, err
		}

		if obj == nil {
			return false, errors.Errorf("GitLab instance %s not found", key)
		}

		gitlab, err := v1alpha1.FromUnstructured(obj)
		if err != nil {
			return false, errors.Wrap(err, "decoding GitLab instance status")
		}

		lastConditions = gitlab.Status.Conditions

		if !gitlab.IsRunning() {
			return false, nil
		}

		running = gitlab

		return true, nil
	})
	if err != nil {
		if wait.Interrupted(err) {
			return nil, errors.Errorf("GitLab instance %s not running after %s, last conditions: %+v", key, l.ReadyTimeout, lastConditions)
		}

		return nil, err
	}

	observeReadinessWait(time.Since(started))
	l.Logger.Info("GitLab instance is running", "instance", key.String(), "elapsed", time.Since(started).Round(time.Second).String())

	return running, nil
}

// TriggerUpgrade validates the target version, replaces spec.version on the
// freshly fetched object (full PUT, last write wins), gives the operator a
// moment to react, then waits for the Running condition to settle again.
func (l *Lifecycle) TriggerUpgrade(ctx context.Context, key types.NamespacedName, version string) (*v1alpha1.GitLabOfficial, error) {
	if _, err := semver.ParseTolerant(version); err != nil {
		return nil, errors.Wrapf(err, "invalid upgrade version %q", version)
	}

	obj, err := l.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if obj == nil {
		return nil, errors.Errorf("GitLab instance %s not found, nothing to upgrade", key)
	}

	if err = unstructured.SetNestedField(obj.Object, version, "spec", "version"); err != nil {
		return nil, errors.Wrap(err, "setting spec.version")
	}

	if err = l.Client.Update(ctx, obj); err != nil {
		return nil, errors.Wrapf(err, "replacing GitLab instance %s", key)
	}

	l.Logger.Info("triggered GitLab upgrade", "instance", key.String(), "version", version)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(l.UpgradeSettle):
	}

	return l.WaitUntilRunning(ctx, key)
}

// ExternalURL reads spec.externalURL of the live resource.
func (l *Lifecycle) ExternalURL(ctx context.Context, key types.NamespacedName) (string, error) {
	obj, err := l.Get(ctx, key)
	if err != nil {
		return "", err
	}

	if obj == nil {
		return "", errors.Errorf("GitLab instance %s not found", key)
	}

	gitlab, err := v1alpha1.FromUnstructured(obj)
	if err != nil {
		return "", errors.Wrap(err, "decoding GitLab instance spec")
	}

	if gitlab.Spec.ExternalURL == "" {
		return "", errors.Errorf("GitLab instance %s has no externalURL", key)
	}

	return gitlab.Spec.ExternalURL, nil
}

func newUnstructured() *unstructured.Unstructured {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(v1alpha1.GroupVersion.WithKind("GitLabOfficial"))

	return obj
}
