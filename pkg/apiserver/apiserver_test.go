package apiserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asepeyo/receipts-backend/pkg/apiserver"
	"github.com/asepeyo/receipts-backend/pkg/directory"
	"github.com/asepeyo/receipts-backend/pkg/hierarchy"
	"github.com/asepeyo/receipts-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
)

// stubDirectory serves a fixed single-team hierarchy: a@x.com belongs to the
// personal group p@x.com, managed by m1@x.com through the nested director
// group d@x.com.
type stubDirectory struct {
	err error
}

func (s *stubDirectory) ListGroupsForUser(ctx context.Context, email string) ([]*directory.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch email {
	case "a@x.com":
		return []*directory.Group{{Name: "EU Personal", Email: "p@x.com"}}, nil
	case "m1@x.com":
		return []*directory.Group{{Name: "EU Director", Email: "d@x.com"}}, nil
	case "d@x.com":
		return []*directory.Group{{Name: "EU Personal", Email: "p@x.com"}}, nil
	}
	return nil, fmt.Errorf("%w: %s", directory.ErrNotFound, email)
}

func (s *stubDirectory) ListGroupMembers(ctx context.Context, groupEmail string, includeDerived bool) ([]*directory.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch groupEmail {
	case "p@x.com":
		return []*directory.Member{
			{Email: "d@x.com", Type: directory.MemberTypeGroup},
			{Email: "a@x.com", Type: directory.MemberTypeUser},
		}, nil
	case "d@x.com":
		return []*directory.Member{{Email: "m1@x.com", Type: directory.MemberTypeUser}}, nil
	}
	return nil, fmt.Errorf("%w: %s", directory.ErrNotFound, groupEmail)
}

func (s *stubDirectory) GetGroupDetails(ctx context.Context, groupEmail string) (*directory.Group, error) {
	if groupEmail == "d@x.com" {
		return &directory.Group{Name: "EU Director", Email: "d@x.com"}, nil
	}
	return nil, fmt.Errorf("%w: %s", directory.ErrNotFound, groupEmail)
}

func (s *stubDirectory) GetUserProfile(ctx context.Context, email string) (*directory.User, error) {
	if email == "m1@x.com" {
		return &directory.User{Email: "m1@x.com", FullName: "Manager One"}, nil
	}
	return nil, fmt.Errorf("%w: %s", directory.ErrNotFound, email)
}

func newServer(t *testing.T, dir directory.Directory, factoryErr error) *httptest.Server {
	log, err := logger.GetLogger("text", "DEBUG")
	assert.NoError(t, err)

	factory := func(ctx context.Context) (*hierarchy.Resolver, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return hierarchy.New(dir, "x.com", []string{"_ag_director", "_director", "_ac_director"}, log), nil
	}

	ts := httptest.NewServer(apiserver.New(factory, log).Router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, asUser string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	assert.NoError(t, err)
	if asUser != "" {
		req.Header.Set("X-Goog-Authenticated-User-Email", "accounts.google.com:"+asUser)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return resp
}

func TestHandler_Managers(t *testing.T) {
	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, nil)
		resp := get(t, ts.URL+"/api/v1/me/managers", "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("own managers", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, nil)
		resp := get(t, ts.URL+"/api/v1/me/managers", "a@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		payload := struct {
			Managers []hierarchy.Manager `json:"managers"`
			Error    *string             `json:"error"`
		}{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Nil(t, payload.Error)
		assert.Equal(t, []hierarchy.Manager{{DisplayName: "Manager One", Email: "m1@x.com"}}, payload.Managers)
	})

	t.Run("managers of explicit subject", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, nil)
		resp := get(t, ts.URL+"/api/v1/users/a@x.com/managers", "m1@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("permission denied surfaces without partial results", func(t *testing.T) {
		dir := &stubDirectory{err: fmt.Errorf("%w: status 403", directory.ErrPermissionDenied)}
		ts := newServer(t, dir, nil)
		resp := get(t, ts.URL+"/api/v1/me/managers", "a@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		payload := struct {
			Managers []hierarchy.Manager `json:"managers"`
			Error    *string             `json:"error"`
		}{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Nil(t, payload.Managers)
		assert.NotNil(t, payload.Error)
		assert.Contains(t, *payload.Error, "domain-wide delegation")
	})

	t.Run("resolver factory failure", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, fmt.Errorf("missing required configuration: RECEIPTS_GOOGLE_CREDENTIALS_JSON"))
		resp := get(t, ts.URL+"/api/v1/me/managers", "a@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestHandler_Role(t *testing.T) {
	t.Run("manager", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, nil)
		resp := get(t, ts.URL+"/api/v1/me/role", "m1@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		payload := struct {
			IsManager bool    `json:"isManager"`
			Error     *string `json:"error"`
		}{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.True(t, payload.IsManager)
		assert.Nil(t, payload.Error)
	})

	t.Run("plain user", func(t *testing.T) {
		ts := newServer(t, &stubDirectory{}, nil)
		resp := get(t, ts.URL+"/api/v1/me/role", "a@x.com")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		payload := struct {
			IsManager bool `json:"isManager"`
		}{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.False(t, payload.IsManager)
	})
}

func TestHandler_Reports(t *testing.T) {
	ts := newServer(t, &stubDirectory{}, nil)
	resp := get(t, ts.URL+"/api/v1/me/reports", "m1@x.com")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := struct {
		Users []hierarchy.ManagedUser `json:"users"`
		Error *string                 `json:"error"`
	}{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Nil(t, payload.Error)
	assert.Equal(t, []hierarchy.ManagedUser{{Email: "a@x.com"}}, payload.Users)
}
