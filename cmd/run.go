// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full scenario: create, upgrade, prepare, verify",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHarness(v)
			if err != nil {
				return err
			}
			defer h.close()

			ctx := cmd.Context()

			if err = runCreate(ctx, h); err != nil {
				return err
			}

			if err = runUpgrade(ctx, h, targetVersion(cmd, v)); err != nil {
				return err
			}

			if err = runPrepare(ctx, h); err != nil {
				return err
			}

			if err = runVerify(ctx, h); err != nil {
				return err
			}

			if cleanup {
				if err = runCleanup(ctx, h); err != nil {
					return err
				}
			}

			h.logger.Info("upgrade test completed successfully")

			return nil
		},
	}

	cmd.Flags().String("version", "", "target GitLab version, also read from "+config.EnvUpgradeVersion)
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete the generated data after a successful run")

	return cmd
}
