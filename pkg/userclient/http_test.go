package userclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/proveritus/estatecloud/pkg/jwtutil"
)

func newTestDirectory(t *testing.T, handler http.HandlerFunc) *HTTPDirectory {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	return NewHTTPDirectory(srv.URL, 2*time.Second, "property-service", jwtUtil, zap.NewNop())
}

func TestGetByID_CachesResult(t *testing.T) {
	calls := 0
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/users/7", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		_ = json.NewEncoder(w).Encode(UserRef{ID: 7, Username: "pm", FirstName: "Pat"})
	})

	user, err := directory.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "pm", user.Username)

	// Second lookup is served from cache.
	_, err = directory.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// The username cache is primed from the same response.
	byName, err := directory.GetByUsername(context.Background(), "pm")
	require.NoError(t, err)
	assert.Equal(t, uint(7), byName.ID)
	assert.Equal(t, 1, calls)
}

func TestGetByID_NotFound(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := directory.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByUsername_QueryParam(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/by-username", r.URL.Path)
		assert.Equal(t, "mary o'brien", r.URL.Query().Get("username"))
		_ = json.NewEncoder(w).Encode(UserRef{ID: 3, Username: "mary o'brien"})
	})

	user, err := directory.GetByUsername(context.Background(), "mary o'brien")
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)
}

func TestGetByIDs_OmitsMissingAndDeduplicates(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/by-ids", r.URL.Path)

		var ids []uint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.ElementsMatch(t, []uint{1, 2, 999}, ids)

		_ = json.NewEncoder(w).Encode([]UserRef{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		})
	})

	users, err := directory.GetByIDs(context.Background(), []uint{1, 2, 1, 999})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, "bob", users[2].Username)
	assert.NotContains(t, users, uint(999))
}

func TestGetByIDs_AllCachedSkipsRequest(t *testing.T) {
	calls := 0
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(UserRef{ID: 5, Username: "eve"})
	})

	_, err := directory.GetByID(context.Background(), 5)
	require.NoError(t, err)

	users, err := directory.GetByIDs(context.Background(), []uint{5})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, calls)
}

func TestGetByIDs_ServerError(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := directory.GetByIDs(context.Background(), []uint{1})
	assert.Error(t, err)
}
