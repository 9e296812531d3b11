// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/AlaudaDevops/upgrade-test/cmd"
)

func main() {
	root := cmd.NewRootCmd()

	if err := root.ExecuteContext(signals.SetupSignalHandler()); err != nil {
		os.Exit(1)
	}
}
