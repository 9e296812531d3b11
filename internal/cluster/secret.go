// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// RootPasswordSecretName is the Secret the operator reads the initial root
// password from.
const RootPasswordSecretName = "gitlab-root-password"

// RootPasswordSecretKey is the data key holding the password.
const RootPasswordSecretKey = "password"

// RecreateRootPasswordSecret deletes any existing root password Secret and
// creates a fresh one, making the operation idempotent by force. A missing
// Secret on delete is not an error.
func (i *Inspector) RecreateRootPasswordSecret(ctx context.Context, namespace, name, password string) error {
	secrets := i.Clientset.CoreV1().Secrets(namespace)

	if err := secrets.Delete(ctx, name, metav1.DeleteOptions{}); err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrapf(err, "deleting secret %s/%s", namespace, name)
	}

	_, err := secrets.Create(ctx, &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Data: map[string][]byte{
			RootPasswordSecretKey: []byte(password),
		},
	}, metav1.CreateOptions{})
	if err != nil {
		return errors.Wrapf(err, "creating secret %s/%s", namespace, name)
	}

	i.Logger.Info("root password secret recreated", "namespace", namespace, "name", name)

	return nil
}
