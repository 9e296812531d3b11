// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"

	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"
)

// FindUser looks a user up by exact username or primary email. Returns
// (nil, nil) when no user matches.
func (o *Operator) FindUser(ctx context.Context, usernameOrEmail string) (*api.User, error) {
	opt := &api.ListUsersOptions{
		ListOptions: api.ListOptions{PerPage: 100},
		Search:      api.Ptr(usernameOrEmail),
	}

	for {
		users, resp, err := o.client.Users.ListUsers(opt, api.WithContext(ctx))
		if err != nil {
			return nil, errors.Wrapf(err, "searching for user %s", usernameOrEmail)
		}

		for _, user := range users {
			if user.Username == usernameOrEmail || user.Email == usernameOrEmail {
				return user, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}

		opt.Page = resp.NextPage
	}
}

// EnsureUser returns the existing user with the given username or email,
// creating it (confirmed, with the given password) when absent.
func (o *Operator) EnsureUser(ctx context.Context, name, username, email, password string) (*api.User, error) {
	if user, err := o.FindUser(ctx, username); err != nil {
		return nil, err
	} else if user != nil {
		o.logger.Info("user already exists", "username", user.Username, "id", user.ID)

		return user, nil
	}

	user, _, err := o.client.Users.CreateUser(&api.CreateUserOptions{
		Name:             api.Ptr(name),
		Username:         api.Ptr(username),
		Email:            api.Ptr(email),
		Password:         api.Ptr(password),
		SkipConfirmation: api.Ptr(true),
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "creating user %s", username)
	}

	o.logger.Info("user created", "username", user.Username, "id", user.ID)

	return user, nil
}
