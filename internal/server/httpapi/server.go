// Package httpapi exposes the sync protocol over plain JSON/HTTP: the
// server-side counterpart of the client's HTTP remote adapter. Upserts are
// compare-and-set on the last-modified timestamp; a rejected push answers
// 409 Conflict with the server's copy of the entity in the body.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/remote"
	"github.com/dvoronkov/petvault/internal/logging"
)

// Server wraps an http.Server around a remote.Store backend. In production
// the backend is the Postgres store; tests plug in anything satisfying the
// interface.
type Server struct {
	addr  string
	store remote.Store
	token string
	log   logging.Logger
}

// NewServer builds a Server. A non-empty token enables bearer
// authentication on every route except the health check.
func NewServer(addr string, store remote.Store, token string, log logging.Logger) *Server {
	return &Server{addr: addr, store: store, token: token, log: log}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("PUT /users/{id}", s.auth(s.handleUpsertUser))
	mux.HandleFunc("PUT /pets/{id}", s.auth(s.handleWritePet))
	mux.HandleFunc("DELETE /pets/{id}", s.auth(s.handleWritePet))
	mux.HandleFunc("GET /users", s.auth(s.handleFetchUsers))
	mux.HandleFunc("GET /pets", s.auth(s.handleFetchPets))
	return mux
}

// auth enforces the static bearer token when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if u.ID != r.PathValue("id") {
		http.Error(w, "body id does not match path", http.StatusBadRequest)
		return
	}

	err := s.store.UpsertUser(r.Context(), &u)
	var conflict *remote.ConflictError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, conflict.User)
	default:
		s.log.Error(r.Context(), "upsert user failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleWritePet covers both PUT and DELETE: a delete is an upsert of the
// tombstoned record, subject to the same compare-and-set.
func (s *Server) handleWritePet(w http.ResponseWriter, r *http.Request) {
	var p models.Pet
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if p.ID != r.PathValue("id") {
		http.Error(w, "body id does not match path", http.StatusBadRequest)
		return
	}

	var err error
	if r.Method == http.MethodDelete {
		err = s.store.DeletePet(r.Context(), &p)
	} else {
		err = s.store.UpsertPet(r.Context(), &p)
	}

	var conflict *remote.ConflictError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, conflict.Pet)
	default:
		s.log.Error(r.Context(), "write pet failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleFetchUsers(w http.ResponseWriter, r *http.Request) {
	userID, since, ok := fetchParams(w, r)
	if !ok {
		return
	}
	users, err := s.store.FetchUsersModifiedSince(r.Context(), userID, since)
	if err != nil {
		s.log.Error(r.Context(), "fetch users failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleFetchPets(w http.ResponseWriter, r *http.Request) {
	userID, since, ok := fetchParams(w, r)
	if !ok {
		return
	}
	pets, err := s.store.FetchPetsModifiedSince(r.Context(), userID, since)
	if err != nil {
		s.log.Error(r.Context(), "fetch pets failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pets == nil {
		pets = []models.Pet{}
	}
	writeJSON(w, http.StatusOK, pets)
}

func fetchParams(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return "", time.Time{}, false
	}
	since, err := models.ParseTime(r.URL.Query().Get("since"))
	if err != nil {
		http.Error(w, "bad since timestamp", http.StatusBadRequest)
		return "", time.Time{}, false
	}
	return userID, since, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
