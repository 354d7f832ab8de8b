package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStore_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "tok")
	require.NoError(t, s.Ping(context.Background()))
}

func TestHTTPStore_PingUnreachable(t *testing.T) {
	s := NewHTTPStore("http://127.0.0.1:0", "")
	err := s.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

func TestHTTPStore_UpsertPet_OK(t *testing.T) {
	var received models.Pet
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/pets/p1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Pet{ID: "p1", UserID: "u1", Name: "Rex", Species: "Dog", CreatedAt: ts, LastModified: ts}

	s := NewHTTPStore(srv.URL, "")
	require.NoError(t, s.UpsertPet(context.Background(), p))
	assert.Equal(t, "Rex", received.Name)
	assert.True(t, ts.Equal(received.LastModified))
}

func TestHTTPStore_UpsertPet_ConflictCarriesRemote(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	remotePet := models.Pet{ID: "p1", UserID: "u1", Name: "Rex Prime", Species: "Dog",
		CreatedAt: ts, LastModified: ts.Add(time.Hour)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(remotePet)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	err := s.UpsertPet(context.Background(), &models.Pet{ID: "p1", LastModified: ts})

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.NotNil(t, conflict.Pet)
	assert.Equal(t, "Rex Prime", conflict.Pet.Name)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestHTTPStore_DeletePet_SendsTombstone(t *testing.T) {
	var received models.Pet
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	require.NoError(t, s.DeletePet(context.Background(), &models.Pet{ID: "p1", Name: "Rex"}))
	assert.True(t, received.Deleted)
}

func TestHTTPStore_FetchPetsModifiedSince(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pets", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode([]models.Pet{
			{ID: "p1", Name: "Rex", LastModified: ts},
		})
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	pets, err := s.FetchPetsModifiedSince(context.Background(), "u1", ts.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "Rex", pets[0].Name)
}

func TestHTTPStore_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	err := s.UpsertPet(context.Background(), &models.Pet{ID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, common.ErrConflict)
}
