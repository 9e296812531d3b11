// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCleanupCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the version group and everything under it",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			return runCleanup(cmd.Context(), h)
		},
	}
}

func runCleanup(ctx context.Context, h *harness) error {
	op, err := h.connectGitLab(ctx)
	if err != nil {
		return err
	}

	return h.dataset(op).Cleanup(ctx)
}
