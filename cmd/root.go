// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package cmd wires the upgrade test steps into a cobra CLI. Each step is
// its own subcommand so CI pipelines can run them separately, and the run
// subcommand chains the whole scenario.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
)

// NewRootCmd builds the upgrade-test command tree. Flags can also be set
// through the environment: UPGRADE_CONFIG for --config and UPGRADE_VERSION
// for --version.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "upgrade-test",
		Short: "GitLab instance upgrade test harness",
		Long: `Drives a GitLab instance managed by the gitlabofficials operator through
its full lifecycle: provision it on the cluster, generate data on it,
upgrade it in place, and verify the data survived.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultPath, "path to the test configuration file")
	flags.String("kubeconfig", "", "path to kubeconfig file, defaults to KUBECONFIG or ~/.kube/config")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	cobra.CheckErr(v.BindPFlag("config", flags.Lookup("config")))
	cobra.CheckErr(v.BindPFlag("kubeconfig", flags.Lookup("kubeconfig")))
	cobra.CheckErr(v.BindPFlag("log-level", flags.Lookup("log-level")))
	cobra.CheckErr(v.BindEnv("config", config.EnvConfigPath))
	cobra.CheckErr(v.BindEnv("version", config.EnvUpgradeVersion))

	root.AddCommand(
		newCreateCmd(v),
		newUpgradeCmd(v),
		newPrepareCmd(v),
		newVerifyCmd(v),
		newCleanupCmd(v),
		newRunCmd(v),
	)

	return root
}
