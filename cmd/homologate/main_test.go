package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homologation/internal/auth"
	"homologation/internal/registry"
	"homologation/pkg/database"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("HOMOLOG_DB_PATH", path)
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKeys(t *testing.T) {
	out, _, err := runCLI(t, "keys", "--json")
	require.NoError(t, err)

	var keys []string
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	assert.Equal(t, registry.OrderedKeys(), keys)

	out, _, err = runCLI(t, "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "CdS")
}

func TestTransform(t *testing.T) {
	setupDB(t)
	site1 := writeFile(t, "site1.json", `[["Algemeen - Merk", "toyota"], ["Algemeen - Handelsbenaming", null]]`)
	site3 := writeFile(t, "site3.json", `[["Type of body", "Hatchback"]]`)

	out, _, err := runCLI(t, "transform", "--site1", site1, "--site3", site3, "--json", "--final")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, registry.Len())
	finals := map[string]string{}
	for _, r := range rows {
		finals[r["Key"]] = r["Valor Final"]
	}
	assert.Equal(t, "TOYOTA", finals["make"])
	assert.Equal(t, "Hatchback", finals["body_type"])

	out, _, err = runCLI(t, "transform", "--site1", site1)
	require.NoError(t, err)
	assert.Contains(t, out, "TOYOTA")
	assert.Contains(t, out, "sources: site1")
}

func TestTransformErrors(t *testing.T) {
	setupDB(t)
	_, _, err := runCLI(t, "transform")
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"not": "pairs"}`)
	_, _, err = runCLI(t, "transform", "--site2", bad)
	assert.Error(t, err)

	_, _, err = runCLI(t, "transform", "--site2", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestProcessWithoutURLs(t *testing.T) {
	setupDB(t)
	_, _, err := runCLI(t, "process")
	assert.Error(t, err)
}

func TestUsersAddAndSetRole(t *testing.T) {
	path := setupDB(t)

	out, _, err := runCLI(t, "users", "add", "--username", "admin", "--email", "admin@example.com", "--password", "password123", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin (admin)")

	_, _, err = runCLI(t, "users", "add", "--username", "admin", "--email", "other@example.com", "--password", "password123")
	assert.Error(t, err)

	_, _, err = runCLI(t, "users", "add", "--username", "bob", "--email", "bob@example.com", "--password", "password123", "--role", "root")
	assert.Error(t, err)

	out, _, err = runCLI(t, "users", "set-role", "--username", "admin", "--role", "standard")
	require.NoError(t, err)
	assert.Contains(t, out, "admin is now standard")

	_, _, err = runCLI(t, "users", "set-role", "--username", "ghost", "--role", "standard")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	db, err := database.OpenMigrated(database.Config{Path: path})
	require.NoError(t, err)
	defer db.Close()
	u, err := auth.NewRepo(db).GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, auth.RoleStandard, u.Role)
	assert.Equal(t, 1, u.TokenVersion)
}

func TestWebsocketURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":      "ws://localhost:8080/ws",
		"https://homolog.example/":   "wss://homolog.example/ws",
		"http://127.0.0.1:9000/api": "ws://127.0.0.1:9000/ws",
	}
	for in, want := range cases {
		got, err := websocketURL(in, "/ws")
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := websocketURL("not a url", "/ws")
	assert.Error(t, err)
}

func TestRootHelp(t *testing.T) {
	out, _, err := runCLI(t)
	require.NoError(t, err)
	for _, sub := range []string{"process", "transform", "keys", "users", "watch"} {
		assert.True(t, strings.Contains(out, sub), sub)
	}
}
