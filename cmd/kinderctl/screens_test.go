package main

import (
	"testing"

	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeModule(t *testing.T) {
	cases := map[string]string{
		"Classes":       "class",
		" semester ":    "semester",
		"teachers":      "teacher",
		"students":      "student",
		"news":          "news",
		"users":         "user-accounts",
		"user_accounts": "user-accounts",
		"gradebook":     "gradebook",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeModule(in), in)
	}
}

func TestOpenScreen(t *testing.T) {
	a := &app{}
	c := client.New("http://localhost", nil)

	for _, name := range moduleNames {
		scr, err := a.openScreen(c, name, listing.Options{})
		require.NoError(t, err, name)
		assert.NotEmpty(t, scr.Header(), name)
	}

	_, err := a.openScreen(c, "gradebook", listing.Options{})
	assert.ErrorContains(t, err, "unknown module")
}

func TestApplyQuery(t *testing.T) {
	scr, err := (&app{}).openScreen(client.New("http://localhost", nil), "teacher", listing.Options{})
	require.NoError(t, err)

	assert.NoError(t, applyQuery(scr, "ann", []string{"gender=female"}))
	assert.ErrorContains(t, applyQuery(scr, "", []string{"gender"}), "key=value")
	assert.Error(t, applyQuery(scr, "", []string{"shoe=42"}))
}
