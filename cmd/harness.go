// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/AlaudaDevops/upgrade-test/api/v1alpha1"
	"github.com/AlaudaDevops/upgrade-test/internal/cluster"
	"github.com/AlaudaDevops/upgrade-test/internal/config"
	"github.com/AlaudaDevops/upgrade-test/internal/gitlab"
	"github.com/AlaudaDevops/upgrade-test/internal/instance"
)

// harness holds everything a subcommand needs: configuration, logging and
// the two Kubernetes clients.
type harness struct {
	cfg    *config.Config
	logger logr.Logger
	zlog   *zap.Logger

	inspector *cluster.Inspector
	lifecycle *instance.Lifecycle
}

// newHarness resolves flags and environment into a ready-to-use harness.
func newHarness(v *viper.Viper) (*harness, error) {
	zlog, err := newZapLogger(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	logger := zapr.NewLogger(zlog)

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	restConfig, err := loadKubeConfig(v.GetString("kubeconfig"))
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, errors.Wrap(err, "building Kubernetes clientset")
	}

	scheme := runtime.NewScheme()
	if err = clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, errors.Wrap(err, "registering core API types")
	}
	if err = v1alpha1.AddToScheme(scheme); err != nil {
		return nil, errors.Wrap(err, "registering gitlabofficials API types")
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, errors.Wrap(err, "building controller-runtime client")
	}

	return &harness{
		cfg:       cfg,
		logger:    logger,
		zlog:      zlog,
		inspector: cluster.NewInspector(clientset, logger),
		lifecycle: instance.NewLifecycle(c, logger),
	}, nil
}

func (h *harness) close() {
	_ = h.zlog.Sync()
}

func (h *harness) instanceKey() types.NamespacedName {
	return types.NamespacedName{Namespace: h.cfg.GitLab.Namespace, Name: h.cfg.GitLab.Name}
}

// connectGitLab opens an authenticated API session against the running
// instance, minting a token through the web sign-in flow when none is
// configured.
func (h *harness) connectGitLab(ctx context.Context) (*gitlab.Operator, error) {
	url, err := h.lifecycle.ExternalURL(ctx, h.instanceKey())
	if err != nil {
		return nil, err
	}

	if token := h.cfg.GitLab.Token; token != "" {
		return gitlab.New(ctx, url, token, h.logger)
	}

	return gitlab.NewFromCredentials(ctx, url, "root", h.cfg.GitLab.RootPassword, h.logger)
}

func (h *harness) dataset(op *gitlab.Operator) *gitlab.Dataset {
	return &gitlab.Dataset{Operator: op, Config: h.cfg, Logger: h.logger.WithName("dataset")}
}

// newZapLogger mirrors the operator's console logging: ISO8601 timestamps,
// capitalized levels, everything to stdout.
func newZapLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		zapLevel,
	)

	return zap.New(core), nil
}

// loadKubeConfig resolves the kubeconfig location: explicit flag, then the
// KUBECONFIG environment variable, then ~/.kube/config, then in-cluster.
func loadKubeConfig(path string) (*rest.Config, error) {
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}

	if path == "" {
		if home := os.Getenv("HOME"); home != "" {
			candidate := filepath.Join(home, ".kube", "config")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		cfg, err := clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading kubeconfig %s", path)
		}

		return cfg, nil
	}

	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "no kubeconfig found and not running in-cluster")
	}

	return cfg, nil
}
