// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"
)

// Upload is one attachment stored on a project, as returned by the project
// uploads endpoint. The API client has no typed service for it, so the
// listing goes through a raw request.
type Upload struct {
	ID        int64      `json:"id"`
	Size      int64      `json:"size"`
	Filename  string     `json:"filename"`
	CreatedAt *time.Time `json:"created_at"`
}

// Branches lists all branches of a project.
func (o *Operator) Branches(ctx context.Context, projectID int) ([]*api.Branch, error) {
	branches, _, err := o.client.Branches.ListBranches(projectID, &api.ListBranchesOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing branches of project %d", projectID)
	}

	return branches, nil
}

// Issues lists all issues of a project.
func (o *Operator) Issues(ctx context.Context, projectID int) ([]*api.Issue, error) {
	issues, _, err := o.client.Issues.ListProjectIssues(projectID, &api.ListProjectIssuesOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing issues of project %d", projectID)
	}

	return issues, nil
}

// MergeRequests lists all merge requests of a project.
func (o *Operator) MergeRequests(ctx context.Context, projectID int) ([]*api.BasicMergeRequest, error) {
	mrs, _, err := o.client.MergeRequests.ListProjectMergeRequests(projectID, &api.ListProjectMergeRequestsOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing merge requests of project %d", projectID)
	}

	return mrs, nil
}

// Commits lists the commits on the default branch of a project.
func (o *Operator) Commits(ctx context.Context, projectID int) ([]*api.Commit, error) {
	commits, _, err := o.client.Commits.ListCommits(projectID, &api.ListCommitsOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing commits of project %d", projectID)
	}

	return commits, nil
}

// IssueNotes lists all comments on one issue of a project.
func (o *Operator) IssueNotes(ctx context.Context, projectID, issueIID int) ([]*api.Note, error) {
	notes, _, err := o.client.Notes.ListIssueNotes(projectID, issueIID, &api.ListIssueNotesOptions{
		ListOptions: api.ListOptions{PerPage: 100},
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "listing notes of issue %d in project %d", issueIID, projectID)
	}

	return notes, nil
}

// Uploads lists the attachments stored on a project.
func (o *Operator) Uploads(ctx context.Context, projectID int) ([]*Upload, error) {
	req, err := o.client.NewRequest(http.MethodGet, fmt.Sprintf("projects/%d/uploads", projectID), nil, []api.RequestOptionFunc{api.WithContext(ctx)})
	if err != nil {
		return nil, errors.Wrapf(err, "building uploads request for project %d", projectID)
	}

	var uploads []*Upload

	if _, err = o.client.Do(req, &uploads); err != nil {
		return nil, errors.Wrapf(err, "listing uploads of project %d", projectID)
	}

	return uploads, nil
}
