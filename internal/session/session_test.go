package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kinderhub/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := FromLogin(dto.LoginResponse{
		AccessToken: "tok",
		User:        dto.SessionUser{FullName: "Ann Lee", Role: "admin"},
	})
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
	assert.Equal(t, []string{}, loaded.Students)
}

func TestLoad_MissingOrBrokenIsAuthError(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o600))
	_, err = Load(broken)
	assert.True(t, errors.As(err, &authErr))

	noToken := filepath.Join(dir, "notoken.json")
	require.NoError(t, os.WriteFile(noToken, []byte(`{"role":"admin"}`), 0o600))
	_, err = Load(noToken)
	assert.True(t, errors.As(err, &authErr))
}

func TestRequireAdmin(t *testing.T) {
	var authErr *AuthError

	var missing *Session
	assert.True(t, errors.As(missing.RequireAdmin(), &authErr))

	parent := &Session{Role: "parent", Token: "tok"}
	assert.True(t, errors.As(parent.RequireAdmin(), &authErr))
	assert.Contains(t, authErr.Error(), "admin role required")

	admin := &Session{Role: "admin", Token: "tok"}
	assert.NoError(t, admin.RequireAdmin())
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, (&Session{Token: "tok"}).Save(path))
	require.NoError(t, Clear(path))
	require.NoError(t, Clear(path))

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
