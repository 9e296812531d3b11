// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"

	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"
)

// FindGroup looks a group up by exact name or path. With parentID > 0 the
// search is restricted to direct sub-groups of that parent, otherwise it
// covers top-level groups. Returns (nil, nil) when nothing matches.
func (o *Operator) FindGroup(ctx context.Context, nameOrPath string, parentID int) (*api.Group, error) {
	list := func(page int) ([]*api.Group, *api.Response, error) {
		if parentID > 0 {
			return o.client.Groups.ListSubGroups(parentID, &api.ListSubGroupsOptions{
				ListOptions: api.ListOptions{Page: page, PerPage: 100},
			}, api.WithContext(ctx))
		}

		return o.client.Groups.ListGroups(&api.ListGroupsOptions{
			ListOptions: api.ListOptions{Page: page, PerPage: 100},
			Search:      api.Ptr(nameOrPath),
		}, api.WithContext(ctx))
	}

	for page := 1; ; {
		groups, resp, err := list(page)
		if err != nil {
			return nil, errors.Wrapf(err, "searching for group %s", nameOrPath)
		}

		for _, group := range groups {
			if group.Name == nameOrPath || group.Path == nameOrPath {
				return group, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}

		page = resp.NextPage
	}
}

// EnsureGroup returns the existing group with the given name or path,
// creating it when absent. parentID == 0 creates a top-level group.
func (o *Operator) EnsureGroup(ctx context.Context, name, path, description string, parentID int) (*api.Group, error) {
	if group, err := o.FindGroup(ctx, name, parentID); err != nil {
		return nil, err
	} else if group != nil {
		o.logger.Info("group already exists", "group", group.FullPath, "id", group.ID)

		return group, nil
	}

	opt := &api.CreateGroupOptions{
		Name:        api.Ptr(name),
		Path:        api.Ptr(path),
		Description: api.Ptr(description),
	}

	if parentID > 0 {
		opt.ParentID = api.Ptr(parentID)
	}

	group, _, err := o.client.Groups.CreateGroup(opt, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "creating group %s", name)
	}

	o.logger.Info("group created", "group", group.FullPath, "id", group.ID)

	return group, nil
}

// SubGroups lists the direct sub-groups of a group.
func (o *Operator) SubGroups(ctx context.Context, groupID int) ([]*api.Group, error) {
	groups, _, err := o.client.Groups.ListSubGroups(groupID, &api.ListSubGroupsOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing sub-groups of group %d", groupID)
	}

	return groups, nil
}

// GroupProjects lists the projects directly inside a group.
func (o *Operator) GroupProjects(ctx context.Context, groupID int) ([]*api.Project, error) {
	projects, _, err := o.client.Groups.ListGroupProjects(groupID, &api.ListGroupProjectsOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing projects of group %d", groupID)
	}

	return projects, nil
}

// DeleteGroup removes the group with the given name or path, including all
// of its sub-groups and projects. Deleting a group that does not exist is
// not an error.
func (o *Operator) DeleteGroup(ctx context.Context, nameOrPath string, parentID int) error {
	group, err := o.FindGroup(ctx, nameOrPath, parentID)
	if err != nil {
		return err
	}

	if group == nil {
		o.logger.Info("group already absent", "group", nameOrPath)

		return nil
	}

	if _, err = o.client.Groups.DeleteGroup(group.ID, nil, api.WithContext(ctx)); err != nil {
		return errors.Wrapf(err, "deleting group %s", group.FullPath)
	}

	o.logger.Info("group deleted", "group", group.FullPath, "id", group.ID)

	return nil
}
