// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
)

func newUpgradeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the GitLab instance in place and wait until it is running again",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			return runUpgrade(cmd.Context(), h, targetVersion(cmd, v))
		},
	}

	cmd.Flags().String("version", "", "target GitLab version, also read from "+config.EnvUpgradeVersion)

	return cmd
}

// targetVersion prefers the command's own --version flag over the
// UPGRADE_VERSION environment binding.
func targetVersion(cmd *cobra.Command, v *viper.Viper) string {
	if version, err := cmd.Flags().GetString("version"); err == nil && version != "" {
		return version
	}

	return v.GetString("version")
}

func runUpgrade(ctx context.Context, h *harness, version string) error {
	if version == "" {
		return errors.Errorf("no target version given, set --version or %s", config.EnvUpgradeVersion)
	}

	gl, err := h.lifecycle.TriggerUpgrade(ctx, h.instanceKey(), version)
	if err != nil {
		return err
	}

	h.logger.Info("GitLab instance upgraded",
		"instance", h.instanceKey().String(),
		"version", gl.Spec.Version,
	)

	return nil
}
