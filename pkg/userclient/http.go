package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/metrics"
)

// HTTPDirectory is a Directory backed by the user service's REST API.
// Lookups are cached briefly so that rendering a page of records does not
// hammer the user service with repeated lookups for the same people.
type HTTPDirectory struct {
	BaseURL     string
	HTTPClient  *http.Client
	Logger      *zap.Logger
	jwtUtil     *jwtutil.JWTUtil
	serviceName string
	cache       *cache.Cache
}

// NewHTTPDirectory creates a directory client for the user service at baseURL.
// Tokens for service-to-service calls are minted with jwtUtil under the
// shared signing key.
func NewHTTPDirectory(baseURL string, timeout time.Duration, serviceName string, jwtUtil *jwtutil.JWTUtil, logger *zap.Logger) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL:     baseURL,
		HTTPClient:  &http.Client{Timeout: timeout},
		Logger:      logger,
		jwtUtil:     jwtUtil,
		serviceName: serviceName,
		cache:       cache.New(2*time.Minute, 5*time.Minute),
	}
}

// GetByID returns the user with the given ID, or ErrNotFound.
func (d *HTTPDirectory) GetByID(ctx context.Context, id uint) (*UserRef, error) {
	key := "id:" + strconv.FormatUint(uint64(id), 10)
	if cached, found := d.cache.Get(key); found {
		return cached.(*UserRef), nil
	}

	var user UserRef
	if err := d.getJSON(ctx, fmt.Sprintf("/api/users/%d", id), &user); err != nil {
		return nil, err
	}

	d.cache.SetDefault(key, &user)
	d.cache.SetDefault("username:"+user.Username, &user)
	return &user, nil
}

// GetByUsername returns the user with the given username, or ErrNotFound.
func (d *HTTPDirectory) GetByUsername(ctx context.Context, username string) (*UserRef, error) {
	key := "username:" + username
	if cached, found := d.cache.Get(key); found {
		return cached.(*UserRef), nil
	}

	var user UserRef
	if err := d.getJSON(ctx, "/api/users/by-username?username="+url.QueryEscape(username), &user); err != nil {
		return nil, err
	}

	d.cache.SetDefault(key, &user)
	d.cache.SetDefault("id:"+strconv.FormatUint(uint64(user.ID), 10), &user)
	return &user, nil
}

// GetByIDs returns users for the given IDs in one round trip. IDs unknown to
// the user service are omitted from the result.
func (d *HTTPDirectory) GetByIDs(ctx context.Context, ids []uint) (map[uint]*UserRef, error) {
	result := make(map[uint]*UserRef, len(ids))

	// Serve what we can from cache, look up only the rest.
	var missing []uint
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if cached, found := d.cache.Get("id:" + strconv.FormatUint(uint64(id), 10)); found {
			result[id] = cached.(*UserRef)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	payload, err := json.Marshal(missing)
	if err != nil {
		return nil, err
	}

	req, err := d.newRequest(ctx, http.MethodPost, "/api/users/by-ids", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := d.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("user service returned status %d: %s", status, string(body))
	}

	var users []UserRef
	if err := json.Unmarshal(body, &users); err != nil {
		d.Logger.Error("Failed to parse user batch response", zap.Error(err))
		return nil, err
	}

	for i := range users {
		u := &users[i]
		result[u.ID] = u
		d.cache.SetDefault("id:"+strconv.FormatUint(uint64(u.ID), 10), u)
		d.cache.SetDefault("username:"+u.Username, u)
	}

	return result, nil
}

// getJSON performs a GET against path and decodes the body into out.
func (d *HTTPDirectory) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := d.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	body, status, err := d.do(req)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusOK:
		return json.Unmarshal(body, out)
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("user service returned status %d: %s", status, string(body))
	}
}

func (d *HTTPDirectory) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, body)
	if err != nil {
		d.Logger.Error("Failed to create request", zap.Error(err))
		return nil, err
	}

	token, err := d.jwtUtil.GenerateServiceToken(d.serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to mint service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return req, nil
}

func (d *HTTPDirectory) do(req *http.Request) ([]byte, int, error) {
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		metrics.RemoteLookupCounter.WithLabelValues(d.serviceName, "error").Inc()
		d.Logger.Error("User service request failed",
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RemoteLookupCounter.WithLabelValues(d.serviceName, "error").Inc()
		d.Logger.Error("Failed to read user service response", zap.Error(err))
		return nil, 0, err
	}

	metrics.RemoteLookupCounter.WithLabelValues(d.serviceName, "ok").Inc()
	return body, resp.StatusCode, nil
}
