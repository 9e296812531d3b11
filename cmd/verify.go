// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the generated hierarchy and the imported project content",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			return runVerify(cmd.Context(), h)
		},
	}
}

func runVerify(ctx context.Context, h *harness) error {
	op, err := h.connectGitLab(ctx)
	if err != nil {
		return err
	}

	ds := h.dataset(op)

	if err = ds.VerifyHierarchy(ctx); err != nil {
		return err
	}

	return ds.VerifyImportedContent(ctx)
}
