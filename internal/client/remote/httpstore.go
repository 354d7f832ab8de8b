package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
)

// HTTPStore implements Store against a hosted sync endpoint speaking plain
// JSON. The server answers 409 Conflict with its own copy of the entity in
// the body when the pushed version is older, which maps onto ConflictError
// without an extra round trip.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore builds a store for the given endpoint. The token, if
// non-empty, is sent as a bearer credential on every request.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return remoteErr("ping", fmt.Errorf("unexpected status %s", resp.Status))
	}
	return nil
}

func (s *HTTPStore) UpsertUser(ctx context.Context, u *models.User) error {
	resp, err := s.do(ctx, http.MethodPut, "/users/"+url.PathEscape(u.ID), u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		remote := &models.User{}
		if err := json.NewDecoder(resp.Body).Decode(remote); err != nil {
			return remoteErr("decode conflict body", err)
		}
		return &ConflictError{Table: models.TableUsers, User: remote}
	default:
		return remoteErr("upsert user", fmt.Errorf("unexpected status %s", resp.Status))
	}
}

func (s *HTTPStore) UpsertPet(ctx context.Context, p *models.Pet) error {
	return s.writePet(ctx, http.MethodPut, p)
}

func (s *HTTPStore) DeletePet(ctx context.Context, p *models.Pet) error {
	tombstone := *p
	tombstone.Deleted = true
	return s.writePet(ctx, http.MethodDelete, &tombstone)
}

func (s *HTTPStore) writePet(ctx context.Context, method string, p *models.Pet) error {
	resp, err := s.do(ctx, method, "/pets/"+url.PathEscape(p.ID), p)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		remote := &models.Pet{}
		if err := json.NewDecoder(resp.Body).Decode(remote); err != nil {
			return remoteErr("decode conflict body", err)
		}
		return &ConflictError{Table: models.TablePets, Pet: remote}
	default:
		return remoteErr("write pet", fmt.Errorf("unexpected status %s", resp.Status))
	}
}

func (s *HTTPStore) FetchUsersModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.User, error) {
	var result []models.User
	if err := s.fetch(ctx, "/users", userID, since, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *HTTPStore) FetchPetsModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.Pet, error) {
	var result []models.Pet
	if err := s.fetch(ctx, "/pets", userID, since, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *HTTPStore) fetch(ctx context.Context, path, userID string, since time.Time, out any) error {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("since", models.FormatTime(since))

	resp, err := s.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remoteErr("fetch "+path, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return remoteErr("decode "+path, err)
	}
	return nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, remoteErr(method+" "+path, err)
	}
	return resp, nil
}

var (
	_ Store = (*HTTPStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
