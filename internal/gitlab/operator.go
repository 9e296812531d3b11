// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package gitlab performs the content side of the upgrade test against a
// running GitLab instance: idempotent creation of users, groups and
// projects, file-based project import, and the read-only accessors the
// verification steps assert on. Every create is find-before-create: running
// the harness twice against the same instance never duplicates objects.
package gitlab

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"

	"github.com/AlaudaDevops/upgrade-test/internal/gitlab/token"
)

// Operator wraps an authenticated GitLab API client.
type Operator struct {
	client *api.Client
	logger logr.Logger

	importPollInterval time.Duration
	importTimeout      time.Duration
}

// New builds an Operator from a personal access token and verifies the
// credentials by resolving the current user. It also makes sure the
// instance accepts file imports, which fresh installations do not.
func New(ctx context.Context, baseURL, accessToken string, logger logr.Logger) (*Operator, error) {
	client, err := api.NewClient(accessToken, api.WithBaseURL(baseURL))
	if err != nil {
		return nil, errors.Wrap(err, "building GitLab client")
	}

	op := &Operator{
		client:             client,
		logger:             logger.WithName("gitlab-operator"),
		importPollInterval: DefaultImportPollInterval,
		importTimeout:      DefaultImportTimeout,
	}

	user, _, err := client.Users.CurrentUser(api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "authenticating against GitLab")
	}

	op.logger.Info("authenticated", "username", user.Username)

	if err = op.EnsureImportSources(ctx); err != nil {
		return nil, err
	}

	return op, nil
}

// NewFromCredentials mints a personal access token through the web sign-in
// flow first. Used when no token is configured, typically right after the
// instance came up for the first time.
func NewFromCredentials(ctx context.Context, baseURL, username, password string, logger logr.Logger) (*Operator, error) {
	session, err := token.NewSession(baseURL, username, password, logger)
	if err != nil {
		return nil, err
	}

	accessToken, err := session.Mint(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "minting personal access token")
	}

	return New(ctx, baseURL, accessToken, logger)
}

// EnsureImportSources enables the manifest and gitlab_project import
// sources when they are missing from the instance settings.
func (o *Operator) EnsureImportSources(ctx context.Context) error {
	settings, _, err := o.client.Settings.GetSettings(api.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "reading GitLab settings")
	}

	sources := settings.ImportSources
	changed := false

	for _, required := range []string{"manifest", "gitlab_project"} {
		if !containsString(sources, required) {
			sources = append(sources, required)
			changed = true
		}
	}

	if !changed {
		return nil
	}

	_, _, err = o.client.Settings.UpdateSettings(&api.UpdateSettingsOptions{
		ImportSources: &sources,
	}, api.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "enabling project import sources")
	}

	o.logger.Info("project import sources enabled", "sources", sources)

	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}
