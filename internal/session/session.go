package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
)

// Session is what kinderctl remembers about the signed-in account. It is
// read from disk and never trusted for authorization; the API checks the
// token on every call.
type Session struct {
	FullName string   `json:"fullName"`
	Role     string   `json:"role"`
	Students []string `json:"students"`
	Token    string   `json:"token"`
}

// AuthError means there is no usable session for the requested action.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "not authorized: " + e.Reason
}

// FromLogin builds a session out of a login response.
func FromLogin(resp dto.LoginResponse) *Session {
	students := resp.User.Students
	if students == nil {
		students = []string{}
	}
	return &Session{
		FullName: resp.User.FullName,
		Role:     resp.User.Role,
		Students: students,
		Token:    resp.AccessToken,
	}
}

// Load reads the session file. A missing file is an AuthError.
func Load(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &AuthError{Reason: "no session, run kinderctl login"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &AuthError{Reason: "session file is corrupt, run kinderctl login"}
	}
	if s.Token == "" {
		return nil, &AuthError{Reason: "session has no token, run kinderctl login"}
	}
	return &s, nil
}

// Save writes the session readable by the current user only.
func (s *Session) Save(path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	return os.WriteFile(path, raw, 0o600)
}

// Clear removes the session file. Removing a missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == string(domain.RoleAdmin)
}

// RequireAdmin gates the admin screens.
func (s *Session) RequireAdmin() error {
	if s == nil || s.Token == "" {
		return &AuthError{Reason: "not signed in"}
	}
	if !s.IsAdmin() {
		return &AuthError{Reason: "admin role required"}
	}
	return nil
}
