// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
)

// Content of the export archive shipped in testdata. These are the numbers
// the archive was built with; a successful import reproduces them exactly.
const (
	expectedBranches      = 3
	expectedIssues        = 2
	expectedMergeRequests = 1
	expectedCommits       = 2
	expectedUploads       = 1
	expectedIssueNotes    = 3

	// The issue whose comments are counted.
	verifiedIssueIID = 1
)

// Dataset generates the version-group hierarchy before the upgrade and
// verifies it survived afterwards.
type Dataset struct {
	Operator *Operator
	Config   *config.Config
	Logger   logr.Logger
}

func (d *Dataset) subGroupName(i int) string {
	return fmt.Sprintf("%s%d", d.Config.GenerationRules.SubGroupPrefix, i)
}

// Project names repeat across sub-groups; the namespace disambiguates.
func (d *Dataset) projectName(i int) string {
	return fmt.Sprintf("%s%d", d.Config.GenerationRules.ProjectPrefix, i)
}

// Prepare builds the full data set: the version group, its sub-groups with
// empty projects, and the imported project from the export archive. All
// steps are idempotent, so Prepare can be re-run after a partial failure.
func (d *Dataset) Prepare(ctx context.Context) error {
	vg := d.Config.VersionGroup
	rules := d.Config.GenerationRules

	group, err := d.Operator.EnsureGroup(ctx, vg.Name, vg.Path, vg.Description, 0)
	if err != nil {
		return err
	}

	for i := 1; i <= rules.SubGroupsCount; i++ {
		name := d.subGroupName(i)

		subGroup, err := d.Operator.EnsureGroup(ctx, name, name, fmt.Sprintf("sub-group %d of %s", i, vg.Name), group.ID)
		if err != nil {
			return err
		}

		for j := 1; j <= rules.ProjectsPerSubGroup; j++ {
			name := d.projectName(j)

			if _, err = d.Operator.EnsureProject(ctx, name, fmt.Sprintf("Test %s in %s", name, subGroup.Name), subGroup.ID); err != nil {
				return err
			}
		}
	}

	ip := d.Config.ImportProject

	// The export archive is optional; without it the run still exercises
	// the generated hierarchy.
	if _, err := os.Stat(ip.FilePath); os.IsNotExist(err) {
		d.Logger.Info("import archive not found, skipping project import", "path", ip.FilePath)
	} else {
		status, err := d.Operator.ImportProjectFromFile(ctx, ip.FilePath, ip.ProjectName, group.ID, true)
		if err != nil {
			return err
		}

		if err = d.Operator.WaitForImport(ctx, status.ID); err != nil {
			return err
		}
	}

	d.Logger.Info("data set prepared", "group", group.FullPath,
		"subGroups", rules.SubGroupsCount, "projectsPerSubGroup", rules.ProjectsPerSubGroup)

	return nil
}

// VerifyHierarchy checks that the version group still holds the expected
// sub-groups and projects. All mismatches are collected before failing so
// one run reports the full damage.
func (d *Dataset) VerifyHierarchy(ctx context.Context) error {
	rules := d.Config.GenerationRules

	group, err := d.Operator.FindGroup(ctx, d.Config.VersionGroup.Name, 0)
	if err != nil {
		return err
	}

	if group == nil {
		return errors.Errorf("version group %s not found", d.Config.VersionGroup.Name)
	}

	var problems []string

	subGroups, err := d.Operator.SubGroups(ctx, group.ID)
	if err != nil {
		return err
	}

	if len(subGroups) != rules.SubGroupsCount {
		problems = append(problems, fmt.Sprintf("expected %d sub-groups, found %d", rules.SubGroupsCount, len(subGroups)))
	}

	for _, subGroup := range subGroups {
		projects, err := d.Operator.GroupProjects(ctx, subGroup.ID)
		if err != nil {
			return err
		}

		if len(projects) != rules.ProjectsPerSubGroup {
			problems = append(problems, fmt.Sprintf("sub-group %s: expected %d projects, found %d", subGroup.FullPath, rules.ProjectsPerSubGroup, len(projects)))
		}
	}

	imported, err := d.Operator.FindProject(ctx, d.Config.ImportProject.ProjectName, group.ID)
	if err != nil {
		return err
	}

	if imported == nil {
		problems = append(problems, fmt.Sprintf("imported project %s not found in group %s", d.Config.ImportProject.ProjectName, group.FullPath))
	}

	if len(problems) > 0 {
		return errors.Errorf("hierarchy verification failed: %s", strings.Join(problems, "; "))
	}

	d.Logger.Info("hierarchy verified", "group", group.FullPath)

	return nil
}

// VerifyImportedContent checks the imported project still carries the
// branches, issues, merge requests, commits, uploads and comments the
// export archive contains.
func (d *Dataset) VerifyImportedContent(ctx context.Context) error {
	group, err := d.Operator.FindGroup(ctx, d.Config.VersionGroup.Name, 0)
	if err != nil {
		return err
	}

	if group == nil {
		return errors.Errorf("version group %s not found", d.Config.VersionGroup.Name)
	}

	project, err := d.Operator.FindProject(ctx, d.Config.ImportProject.ProjectName, group.ID)
	if err != nil {
		return err
	}

	if project == nil {
		return errors.Errorf("imported project %s not found in group %s", d.Config.ImportProject.ProjectName, group.FullPath)
	}

	var problems []string

	check := func(kind string, expected, found int) {
		if found != expected {
			problems = append(problems, fmt.Sprintf("expected %d %s, found %d", expected, kind, found))
		}
	}

	branches, err := d.Operator.Branches(ctx, project.ID)
	if err != nil {
		return err
	}
	check("branches", expectedBranches, len(branches))

	issues, err := d.Operator.Issues(ctx, project.ID)
	if err != nil {
		return err
	}
	check("issues", expectedIssues, len(issues))

	mrs, err := d.Operator.MergeRequests(ctx, project.ID)
	if err != nil {
		return err
	}
	check("merge requests", expectedMergeRequests, len(mrs))

	commits, err := d.Operator.Commits(ctx, project.ID)
	if err != nil {
		return err
	}
	check("commits", expectedCommits, len(commits))

	uploads, err := d.Operator.Uploads(ctx, project.ID)
	if err != nil {
		return err
	}
	check("uploads", expectedUploads, len(uploads))

	notes, err := d.Operator.IssueNotes(ctx, project.ID, verifiedIssueIID)
	if err != nil {
		return err
	}
	check(fmt.Sprintf("comments on issue %d", verifiedIssueIID), expectedIssueNotes, len(notes))

	if len(problems) > 0 {
		return errors.Errorf("imported content verification failed for %s: %s", project.PathWithNamespace, strings.Join(problems, "; "))
	}

	d.Logger.Info("imported content verified", "project", project.PathWithNamespace)

	return nil
}

// Cleanup removes the version group and everything under it. A group that
// is already gone is not an error.
func (d *Dataset) Cleanup(ctx context.Context) error {
	return d.Operator.DeleteGroup(ctx, d.Config.VersionGroup.Name, 0)
}
