package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Session carries the broker credentials for one trading session. It is an
// explicit value passed into the client, not package state; Refresh returns a
// new session rather than mutating in place.
type Session struct {
	APIKey      string
	AccessToken string
	Expiry      time.Time
}

// Valid reports whether the session has a token that has not expired.
func (s Session) Valid(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.Expiry)
}

// authorization builds the MStocks Authorization header value.
func (s Session) authorization() string {
	return "token " + s.APIKey + ":" + s.AccessToken
}

// Refresh exchanges the current token for a fresh one at the broker's token
// endpoint and returns the updated session.
func (s Session) Refresh(ctx context.Context, httpClient *http.Client, baseURL string) (Session, error) {
	form := url.Values{}
	form.Set("api_key", s.APIKey)
	form.Set("refresh_token", s.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(baseURL, "/")+"/session/refresh", strings.NewReader(form.Encode()))
	if err != nil {
		return s, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Mirae-Version", "1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return s, fmt.Errorf("session refresh failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s, fmt.Errorf("session refresh failed: status %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Data   struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return s, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if body.Data.AccessToken == "" {
		return s, fmt.Errorf("session refresh returned no token")
	}

	expiry := time.Now().Add(time.Duration(body.Data.ExpiresIn) * time.Second)
	if body.Data.ExpiresIn == 0 {
		expiry = time.Now().Add(8 * time.Hour)
	}
	return Session{APIKey: s.APIKey, AccessToken: body.Data.AccessToken, Expiry: expiry}, nil
}
