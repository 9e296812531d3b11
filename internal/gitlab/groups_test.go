// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGroup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 10, "name": "v17.4.2", "path": "v17-4-2", "full_path": "v17-4-2"},
		})
	})
	mux.HandleFunc("GET /api/v4/groups/10/subgroups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 11, "name": "group1", "path": "group1", "full_path": "v17-4-2/group1"},
		})
	})

	op := newTestOperator(t, mux)
	ctx := context.Background()

	t.Run("top level by name", func(t *testing.T) {
		group, err := op.FindGroup(ctx, "v17.4.2", 0)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, 10, group.ID)
	})

	t.Run("sub-group by path", func(t *testing.T) {
		group, err := op.FindGroup(ctx, "group1", 10)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, 11, group.ID)
	})

	t.Run("absent sub-group", func(t *testing.T) {
		group, err := op.FindGroup(ctx, "group9", 10)
		require.NoError(t, err)
		assert.Nil(t, group)
	})
}

func TestEnsureGroupCreatesUnderParent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/groups/10/subgroups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})
	mux.HandleFunc("POST /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Path     string `json:"path"`
			ParentID int    `json:"parent_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "group1", body.Name)
		assert.Equal(t, 10, body.ParentID)

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 11, "name": body.Name, "path": body.Path, "full_path": "v17-4-2/" + body.Path})
	})

	op := newTestOperator(t, mux)

	group, err := op.EnsureGroup(context.Background(), "group1", "group1", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 11, group.ID)
}

func TestDeleteGroup(t *testing.T) {
	t.Run("deletes existing", func(t *testing.T) {
		deleted := false

		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []map[string]any{{"id": 10, "name": "v17.4.2", "path": "v17-4-2", "full_path": "v17-4-2"}})
		})
		mux.HandleFunc("DELETE /api/v4/groups/10", func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			w.WriteHeader(http.StatusAccepted)
		})

		op := newTestOperator(t, mux)

		require.NoError(t, op.DeleteGroup(context.Background(), "v17.4.2", 0))
		assert.True(t, deleted)
	})

	t.Run("absent group is not an error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []map[string]any{})
		})

		op := newTestOperator(t, mux)

		require.NoError(t, op.DeleteGroup(context.Background(), "v17.4.2", 0))
	})
}
