// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/types"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
	"github.com/AlaudaDevops/upgrade-test/internal/gitlab"
	"github.com/AlaudaDevops/upgrade-test/internal/instance"
)

var _ = Describe("Upgrade a GitLab instance in place", Ordered, func() {
	var (
		key      types.NamespacedName
		operator *gitlab.Operator
		dataset  *gitlab.Dataset
	)

	BeforeAll(func() {
		key = types.NamespacedName{Namespace: cfg.GitLab.Namespace, Name: cfg.GitLab.Name}
	})

	It("provisions the instance and waits for the Running condition", func(ctx SpecContext) {
		Expect(inspector.EnsureNamespace(ctx, cfg.GitLab.Namespace)).To(Succeed())

		provisioner := instance.NewProvisioner(inspector, lifecycle, logger)

		gl, err := provisioner.Provision(ctx, instance.ProvisionRequest{
			Namespace:    cfg.GitLab.Namespace,
			Name:         cfg.GitLab.Name,
			ValuesFile:   cfg.GitLab.ValuesFile,
			RootPassword: cfg.GitLab.RootPassword,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(gl.IsRunning()).To(BeTrue())
		Expect(gl.Spec.ExternalURL).ToNot(BeEmpty())
	}, NodeTimeout(20*time.Minute))

	It("upgrades the instance and waits for it to settle", func(ctx SpecContext) {
		version := os.Getenv(config.EnvUpgradeVersion)
		Expect(version).ToNot(BeEmpty(), "UPGRADE_VERSION must name the target GitLab version")

		gl, err := lifecycle.TriggerUpgrade(ctx, key, version)
		Expect(err).ToNot(HaveOccurred())
		Expect(gl.Spec.Version).To(Equal(version))
		Expect(gl.IsRunning()).To(BeTrue())
	}, NodeTimeout(30*time.Minute))

	It("authenticates against the upgraded instance", func(ctx SpecContext) {
		url, err := lifecycle.ExternalURL(ctx, key)
		Expect(err).ToNot(HaveOccurred())

		if cfg.GitLab.Token != "" {
			operator, err = gitlab.New(ctx, url, cfg.GitLab.Token, logger)
		} else {
			operator, err = gitlab.NewFromCredentials(ctx, url, "root", cfg.GitLab.RootPassword, logger)
		}
		Expect(err).ToNot(HaveOccurred())

		dataset = &gitlab.Dataset{Operator: operator, Config: cfg, Logger: logger}
	}, NodeTimeout(5*time.Minute))

	It("prepares the version group data set", func(ctx SpecContext) {
		Expect(dataset.Prepare(ctx)).To(Succeed())
	}, NodeTimeout(15*time.Minute))

	It("verifies the group hierarchy on the upgraded instance", func(ctx SpecContext) {
		Expect(dataset.VerifyHierarchy(ctx)).To(Succeed())
	}, NodeTimeout(5*time.Minute))

	It("verifies the imported project content on the upgraded instance", func(ctx SpecContext) {
		Expect(dataset.VerifyImportedContent(ctx)).To(Succeed())
	}, NodeTimeout(5*time.Minute))

	AfterAll(func(ctx SpecContext) {
		if os.Getenv("UPGRADE_E2E_KEEP") != "" || dataset == nil {
			return
		}

		Expect(dataset.Cleanup(ctx)).To(Succeed())
	}, NodeTimeout(5*time.Minute))
})
