// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	api "gitlab.com/gitlab-org/api/client-go"
	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	// Import polling is slower than instance readiness polling since a
	// file import holds the Sidekiq queue for a while.
	DefaultImportPollInterval = 10 * time.Second
	DefaultImportTimeout      = 5 * time.Minute
)

// ImportProjectFromFile uploads an export archive and starts a project
// import into the given namespace. With overwrite set, an existing project
// with the same path is replaced; without it, an occupied path short-circuits
// to the existing project and nothing is uploaded. The returned status
// carries the ID of the project being imported; completion is observed with
// WaitForImport.
func (o *Operator) ImportProjectFromFile(ctx context.Context, archivePath, name string, namespaceID int, overwrite bool) (*api.ImportStatus, error) {
	if !overwrite {
		existing, err := o.FindProject(ctx, name, namespaceID)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			o.logger.Info("project already exists, skipping import", "project", existing.PathWithNamespace, "id", existing.ID)

			return &api.ImportStatus{ID: existing.ID, ImportStatus: "finished"}, nil
		}
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening export archive %s", archivePath)
	}
	defer archive.Close()

	status, _, err := o.client.ProjectImportExport.ImportFromFile(archive, &api.ImportFileOptions{
		Namespace: api.Ptr(strconv.Itoa(namespaceID)),
		Name:      api.Ptr(name),
		Path:      api.Ptr(name),
		Overwrite: api.Ptr(overwrite),
	}, api.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "importing project %s from %s", name, archivePath)
	}

	o.logger.Info("project import started", "project", name, "id", status.ID, "status", status.ImportStatus)

	return status, nil
}

// WaitForImport polls the import status of the given project until it
// finishes. A failed import surfaces the import error from the instance; an
// import still running at the deadline is an error as well.
func (o *Operator) WaitForImport(ctx context.Context, projectID int) error {
	start := time.Now()
	lastStatus := ""

	err := wait.PollUntilContextTimeout(ctx, o.importPollInterval, o.importTimeout, true, func(ctx context.Context) (bool, error) {
		status, _, err := o.client.ProjectImportExport.ImportStatus(projectID, api.WithContext(ctx))
		if err != nil {
			return false, errors.Wrapf(err, "reading import status of project %d", projectID)
		}

		lastStatus = status.ImportStatus

		switch status.ImportStatus {
		case "finished":
			return true, nil
		case "failed":
			return false, errors.Errorf("import of project %d failed: %s", projectID, status.ImportError)
		case "started", "scheduled":
			o.logger.Info("import in progress", "project", projectID, "status", status.ImportStatus)

			return false, nil
		default:
			o.logger.Info("unexpected import status, still waiting", "project", projectID, "status", status.ImportStatus)

			return false, nil
		}
	})
	if err != nil {
		if wait.Interrupted(err) {
			return errors.Errorf("import of project %d not finished after %s, last status: %s", projectID, o.importTimeout, lastStatus)
		}

		return err
	}

	observeImportWait(time.Since(start))

	o.logger.Info("project import finished", "project", projectID, "elapsed", time.Since(start).Round(time.Second).String())

	return nil
}
