// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPrepareCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Generate the version group, sub-groups, projects and the imported project",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			return runPrepare(cmd.Context(), h)
		},
	}
}

func runPrepare(ctx context.Context, h *harness) error {
	op, err := h.connectGitLab(ctx)
	if err != nil {
		return err
	}

	return h.dataset(op).Prepare(ctx)
}
