// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlaudaDevops/upgrade-test/internal/config"
)

// fakeGitLab is a minimal stateful stand-in for the group/project part of
// the GitLab API, enough to drive the data set end to end.
type fakeGitLab struct {
	mu       sync.Mutex
	nextID   int
	groups   map[int]*fakeGroup
	projects map[int]*fakeProject
}

type fakeGroup struct {
	ID       int
	Name     string
	Path     string
	ParentID int
}

type fakeProject struct {
	ID          int
	Name        string
	NamespaceID int
}

func newFakeGitLab() *fakeGitLab {
	return &fakeGitLab{nextID: 1, groups: map[int]*fakeGroup{}, projects: map[int]*fakeProject{}}
}

func (f *fakeGitLab) id() int {
	id := f.nextID
	f.nextID++

	return id
}

func (f *fakeGitLab) groupJSON(g *fakeGroup) map[string]any {
	return map[string]any{"id": g.ID, "name": g.Name, "path": g.Path, "full_path": g.Path, "parent_id": g.ParentID}
}

func (f *fakeGitLab) projectJSON(p *fakeProject) map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "path_with_namespace": p.Name, "namespace": map[string]any{"id": p.NamespaceID}}
}

func (f *fakeGitLab) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	pathID := func(r *http.Request) int {
		id, err := strconv.Atoi(r.PathValue("id"))
		require.NoError(t, err)

		return id
	}

	mux.HandleFunc("GET /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		out := []map[string]any{}
		for _, g := range f.groups {
			if g.ParentID == 0 {
				out = append(out, f.groupJSON(g))
			}
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("POST /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Path     string `json:"path"`
			ParentID int    `json:"parent_id"`
		}
		require.NoError(t, jsonDecode(r, &body))

		f.mu.Lock()
		defer f.mu.Unlock()

		g := &fakeGroup{ID: f.id(), Name: body.Name, Path: body.Path, ParentID: body.ParentID}
		f.groups[g.ID] = g

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, f.groupJSON(g))
	})

	mux.HandleFunc("GET /api/v4/groups/{id}/subgroups", func(w http.ResponseWriter, r *http.Request) {
		parentID := pathID(r)

		f.mu.Lock()
		defer f.mu.Unlock()

		out := []map[string]any{}
		for _, g := range f.groups {
			if g.ParentID == parentID {
				out = append(out, f.groupJSON(g))
			}
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("GET /api/v4/groups/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		groupID := pathID(r)

		f.mu.Lock()
		defer f.mu.Unlock()

		out := []map[string]any{}
		for _, p := range f.projects {
			if p.NamespaceID == groupID {
				out = append(out, f.projectJSON(p))
			}
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("DELETE /api/v4/groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		groupID := pathID(r)

		f.mu.Lock()
		defer f.mu.Unlock()

		doomed := map[int]bool{groupID: true}
		for changed := true; changed; {
			changed = false
			for _, g := range f.groups {
				if doomed[g.ParentID] && !doomed[g.ID] {
					doomed[g.ID] = true
					changed = true
				}
			}
		}

		for id := range doomed {
			delete(f.groups, id)
		}
		for id, p := range f.projects {
			if doomed[p.NamespaceID] {
				delete(f.projects, id)
			}
		}

		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		out := []map[string]any{}
		for _, p := range f.projects {
			out = append(out, f.projectJSON(p))
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("POST /api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			NamespaceID int    `json:"namespace_id"`
		}
		require.NoError(t, jsonDecode(r, &body))

		f.mu.Lock()
		defer f.mu.Unlock()

		p := &fakeProject{ID: f.id(), Name: body.Name, NamespaceID: body.NamespaceID}
		f.projects[p.ID] = p

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, f.projectJSON(p))
	})

	mux.HandleFunc("POST /api/v4/projects/import", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		namespaceID, err := strconv.Atoi(r.FormValue("namespace"))
		require.NoError(t, err)
		name := r.FormValue("name")

		f.mu.Lock()
		defer f.mu.Unlock()

		// Overwrite semantics: an import into an occupied path replaces
		// the project.
		for id, p := range f.projects {
			if p.Name == name && p.NamespaceID == namespaceID {
				delete(f.projects, id)
			}
		}

		p := &fakeProject{ID: f.id(), Name: name, NamespaceID: namespaceID}
		f.projects[p.ID] = p

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": p.ID, "import_status": "scheduled"})
	})

	mux.HandleFunc("GET /api/v4/projects/{id}/import", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": pathID(r), "import_status": "finished"})
	})

	return mux
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}

func datasetConfig(t *testing.T) *config.Config {
	t.Helper()

	archive := filepath.Join(t.TempDir(), "export.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("fake-archive"), 0o644))

	return &config.Config{
		GitLab: config.GitLab{Namespace: "testing-gitlab-upgrade", Name: "upgrade-test-gitlab", RootPassword: "pw"},
		ImportProject: config.ImportProject{
			FilePath:    archive,
			ProjectName: "test-upgrade-repo",
		},
		VersionGroup: config.VersionGroup{Name: "v17.4.2", Path: "v17-4-2"},
		GenerationRules: config.GenerationRules{
			SubGroupsCount:      3,
			ProjectsPerSubGroup: 3,
			SubGroupPrefix:      "group",
			ProjectPrefix:       "project",
		},
	}
}

func newTestDataset(t *testing.T, handler http.Handler) *Dataset {
	t.Helper()

	op := newTestOperator(t, handler)

	return &Dataset{Operator: op, Config: datasetConfig(t), Logger: op.logger}
}

func TestDatasetPrepareAndCleanup(t *testing.T) {
	fake := newFakeGitLab()
	ds := newTestDataset(t, fake.handler(t))
	ctx := context.Background()

	require.NoError(t, ds.Prepare(ctx))

	// 1 version group + 3 sub-groups, 9 generated projects + 1 import.
	assert.Len(t, fake.groups, 4)
	assert.Len(t, fake.projects, 10)

	require.NoError(t, ds.VerifyHierarchy(ctx))

	t.Run("prepare is idempotent", func(t *testing.T) {
		require.NoError(t, ds.Prepare(ctx))
		assert.Len(t, fake.groups, 4)
		assert.Len(t, fake.projects, 10)
	})

	t.Run("cleanup removes everything", func(t *testing.T) {
		require.NoError(t, ds.Cleanup(ctx))
		assert.Empty(t, fake.groups)
		assert.Empty(t, fake.projects)

		err := ds.VerifyHierarchy(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")

		// Cleaning an already clean instance is fine.
		require.NoError(t, ds.Cleanup(ctx))
	})
}

func TestDatasetVerifyHierarchyReportsAllMismatches(t *testing.T) {
	fake := newFakeGitLab()
	ds := newTestDataset(t, fake.handler(t))
	ctx := context.Background()

	require.NoError(t, ds.Prepare(ctx))

	// Drop one generated project from the second sub-group and the
	// imported project.
	fake.mu.Lock()
	var group2 int
	for _, g := range fake.groups {
		if g.Name == "group2" {
			group2 = g.ID
		}
	}
	for id, p := range fake.projects {
		if (p.Name == "project1" && p.NamespaceID == group2) || p.Name == "test-upgrade-repo" {
			delete(fake.projects, id)
		}
	}
	fake.mu.Unlock()

	err := ds.VerifyHierarchy(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 projects, found 2")
	assert.Contains(t, err.Error(), "test-upgrade-repo not found")
}

func TestDatasetPrepareSkipsMissingArchive(t *testing.T) {
	fake := newFakeGitLab()
	ds := newTestDataset(t, fake.handler(t))
	ds.Config.ImportProject.FilePath = filepath.Join(t.TempDir(), "missing.tar.gz")
	ctx := context.Background()

	require.NoError(t, ds.Prepare(ctx))

	// Hierarchy is complete, only the import was skipped.
	assert.Len(t, fake.groups, 4)
	assert.Len(t, fake.projects, 9)

	err := ds.VerifyHierarchy(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test-upgrade-repo not found")
}
