// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportProjectFromFile(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "export.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("fake-archive"), 0o644))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v4/projects/import", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "10", r.FormValue("namespace"))
		assert.Equal(t, "test-upgrade-repo", r.FormValue("name"))
		assert.Equal(t, "test-upgrade-repo", r.FormValue("path"))
		assert.Equal(t, "true", r.FormValue("overwrite"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "export.tar.gz", header.Filename)

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 30, "import_status": "scheduled"})
	})

	op := newTestOperator(t, mux)

	status, err := op.ImportProjectFromFile(context.Background(), archive, "test-upgrade-repo", 10, true)
	require.NoError(t, err)
	assert.Equal(t, 30, status.ID)
	assert.Equal(t, "scheduled", status.ImportStatus)
}

func TestImportProjectFromFileWithoutOverwrite(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "export.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("fake-archive"), 0o644))

	t.Run("occupied path short-circuits to the existing project", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []map[string]any{
				{"id": 20, "name": "test-upgrade-repo", "namespace": map[string]any{"id": 10}},
			})
		})
		mux.HandleFunc("POST /api/v4/projects/import", func(w http.ResponseWriter, r *http.Request) {
			t.Error("must not upload the archive when the path is occupied and overwrite is off")
		})

		op := newTestOperator(t, mux)

		status, err := op.ImportProjectFromFile(context.Background(), archive, "test-upgrade-repo", 10, false)
		require.NoError(t, err)
		assert.Equal(t, 20, status.ID)
		assert.Equal(t, "finished", status.ImportStatus)
	})

	t.Run("free path imports normally", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []map[string]any{})
		})
		mux.HandleFunc("POST /api/v4/projects/import", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "false", r.FormValue("overwrite"))

			w.WriteHeader(http.StatusCreated)
			writeJSON(t, w, map[string]any{"id": 31, "import_status": "scheduled"})
		})

		op := newTestOperator(t, mux)

		status, err := op.ImportProjectFromFile(context.Background(), archive, "test-upgrade-repo", 10, false)
		require.NoError(t, err)
		assert.Equal(t, 31, status.ID)
	})
}

func TestImportProjectFromFileMissingArchive(t *testing.T) {
	op := newTestOperator(t, http.NewServeMux())

	_, err := op.ImportProjectFromFile(context.Background(), "/does/not/exist.tar.gz", "repo", 10, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening export archive")
}

func TestWaitForImport(t *testing.T) {
	t.Run("finishes after a few polls", func(t *testing.T) {
		var polls atomic.Int32

		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects/30/import", func(w http.ResponseWriter, r *http.Request) {
			status := "started"
			if polls.Add(1) >= 3 {
				status = "finished"
			}

			writeJSON(t, w, map[string]any{"id": 30, "import_status": status})
		})

		op := newTestOperator(t, mux)

		require.NoError(t, op.WaitForImport(context.Background(), 30))
		assert.GreaterOrEqual(t, polls.Load(), int32(3))
	})

	t.Run("failed import surfaces the instance error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects/30/import", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"id": 30, "import_status": "failed", "import_error": "archive corrupted"})
		})

		op := newTestOperator(t, mux)

		err := op.WaitForImport(context.Background(), 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "archive corrupted")
	})

	t.Run("times out while still running", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects/30/import", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"id": 30, "import_status": "started"})
		})

		op := newTestOperator(t, mux)

		err := op.WaitForImport(context.Background(), 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not finished")
		assert.Contains(t, err.Error(), "started")
	})

	t.Run("unknown status keeps polling", func(t *testing.T) {
		var polls atomic.Int32

		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/projects/30/import", func(w http.ResponseWriter, r *http.Request) {
			status := "none"
			if polls.Add(1) >= 2 {
				status = "finished"
			}

			writeJSON(t, w, map[string]any{"id": 30, "import_status": status})
		})

		op := newTestOperator(t, mux)

		require.NoError(t, op.WaitForImport(context.Background(), 30))
	})
}
