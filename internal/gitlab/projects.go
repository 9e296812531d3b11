// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"

	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"
)

// FindProject looks a project up by exact name inside the given namespace.
// Returns (nil, nil) when no project matches.
func (o *Operator) FindProject(ctx context.Context, name string, namespaceID int) (*api.Project, error) {
	opt := &api.ListProjectsOptions{
		ListOptions: api.ListOptions{PerPage: 100},
		Search:      api.Ptr(name),
	}

	for {
		projects, resp, err := o.client.Projects.ListProjects(opt, api.WithContext(ctx))
		if err != nil {
			return nil, errors.Wrapf(err, "searching for project %s", name)
		}

		for _, project := range projects {
			if project.Name == name && project.Namespace != nil && project.Namespace.ID == namespaceID {
				return project, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}

		opt.Page = resp.NextPage
	}
}

// EnsureProject returns the existing project with the given name in the
// namespace, creating an empty one when absent.
func (o *Operator) EnsureProject(ctx context.Context, name, description string, namespaceID int) (*api.Project, error) {
	if project, err := o.FindProject(ctx, name, namespaceID); err != nil {
		return nil, err
	} else if project != nil {
		o.logger.Info("project already exists", "project", project.PathWithNamespace, "id", project.ID)

		return project, nil
	}

	project, _, err := o.client.Projects.CreateProject(&api.CreateProjectOptions{
		Name:        api.Ptr(name),
		Description: api.Ptr(description),
		NamespaceID: api.Ptr(namespaceID),
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "creating project %s", name)
	}

	o.logger.Info("project created", "project", project.PathWithNamespace, "id", project.ID)

	return project, nil
}

// CreateProjectFromURL mirrors a repository from importURL into a new
// project in the namespace. Idempotent like the other ensure operations.
func (o *Operator) CreateProjectFromURL(ctx context.Context, name, description, importURL string, namespaceID int) (*api.Project, error) {
	if project, err := o.FindProject(ctx, name, namespaceID); err != nil {
		return nil, err
	} else if project != nil {
		o.logger.Info("project already exists", "project", project.PathWithNamespace, "id", project.ID)

		return project, nil
	}

	project, _, err := o.client.Projects.CreateProject(&api.CreateProjectOptions{
		Name:        api.Ptr(name),
		Description: api.Ptr(description),
		NamespaceID: api.Ptr(namespaceID),
		ImportURL:   api.Ptr(importURL),
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "creating project %s from %s", name, importURL)
	}

	o.logger.Info("project import from URL started", "project", project.PathWithNamespace, "id", project.ID, "importURL", importURL)

	return project, nil
}
