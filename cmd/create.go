// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlaudaDevops/upgrade-test/internal/instance"
)

func newCreateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Provision the GitLab instance and wait until it is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			return runCreate(cmd.Context(), h)
		},
	}
}

func runCreate(ctx context.Context, h *harness) error {
	if err := h.inspector.EnsureNamespace(ctx, h.cfg.GitLab.Namespace); err != nil {
		return err
	}

	provisioner := instance.NewProvisioner(h.inspector, h.lifecycle, h.logger)

	gl, err := provisioner.Provision(ctx, instance.ProvisionRequest{
		Namespace:    h.cfg.GitLab.Namespace,
		Name:         h.cfg.GitLab.Name,
		ValuesFile:   h.cfg.GitLab.ValuesFile,
		RootPassword: h.cfg.GitLab.RootPassword,
	})
	if err != nil {
		return err
	}

	h.logger.Info("GitLab instance is ready",
		"instance", h.instanceKey().String(),
		"version", gl.Spec.Version,
		"externalURL", gl.Spec.ExternalURL,
	)

	return nil
}
