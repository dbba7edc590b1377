// ABOUTME: Smoke tests for the CLI command tree
// ABOUTME: Verifies command registration and the version output

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_CommandTree(t *testing.T) {
	root := newRootCmd()

	want := []string{"version", "login", "logout", "me", "problems", "submit", "watch"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}

	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "loco "))
}

func TestCredentials_FallBackToEnv(t *testing.T) {
	t.Setenv("LOCO_EMAIL", "ada@example.com")
	t.Setenv("LOCO_PASSWORD", "hunter2")

	email, password, err := credentials("", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
	assert.Equal(t, "hunter2", password)
}

func TestCredentials_FlagsWin(t *testing.T) {
	t.Setenv("LOCO_EMAIL", "env@example.com")
	t.Setenv("LOCO_PASSWORD", "env-pass")

	email, password, err := credentials("flag@example.com", "flag-pass")
	require.NoError(t, err)
	assert.Equal(t, "flag@example.com", email)
	assert.Equal(t, "flag-pass", password)
}

func TestCredentials_MissingIsAnError(t *testing.T) {
	t.Setenv("LOCO_EMAIL", "")
	t.Setenv("LOCO_PASSWORD", "")

	_, _, err := credentials("", "")
	assert.Error(t, err)
}
