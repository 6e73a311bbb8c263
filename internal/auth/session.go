package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	mePath         = "/wp-json/wp/v2/users/me"
	requestTimeout = 10 * time.Second
)

// ErrInvalidCredentials is returned when the site rejects the login.
var ErrInvalidCredentials = errors.New("invalid username or application password")

// Session holds WordPress application-password credentials in memory.
type Session struct {
	client  *http.Client
	siteURL string

	mu          sync.Mutex
	username    string
	password    string
	displayName string
	loggedIn    bool
}

// NewSession creates a logged-out session for the site at siteURL.
func NewSession(siteURL string) *Session {
	return &Session{
		client:  &http.Client{Timeout: requestTimeout},
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Login checks the credentials against the site and keeps them on success.
func (s *Session) Login(ctx context.Context, username, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.siteURL+mePath, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("login failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var me struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return fmt.Errorf("decoding user: %w", err)
	}

	s.mu.Lock()
	s.username = username
	s.password = password
	s.displayName = me.Name
	s.loggedIn = true
	s.mu.Unlock()
	log.Printf("auth: logged in as %s", username)
	return nil
}

// Logout forgets the credentials.
func (s *Session) Logout() {
	s.mu.Lock()
	s.username, s.password, s.displayName = "", "", ""
	s.loggedIn = false
	s.mu.Unlock()
}

func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Apply adds the credentials to req.
func (s *Session) Apply(req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn {
		req.SetBasicAuth(s.username, s.password)
	}
}

// DisplayName is the site's name for the logged-in user.
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.displayName != "" {
		return s.displayName
	}
	return s.username
}
