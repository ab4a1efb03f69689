package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/potluck/internal/backend/backendtest"
	"github.com/Lixing-Zhang/potluck/internal/models"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, srv *backendtest.Server, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"-backend", srv.URL}, args...),
		strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func sampleEntries() []models.Entry {
	return []models.Entry{
		{Name: "Asha", Category: "Starters", Dish: "Samosa", Quantity: 4},
		{Name: "Ben", Category: "Sweets", Dish: "Kheer", Quantity: 1},
		{Name: "Chen", Category: "Rice Items", Dish: "Biryani", Quantity: 2},
	}
}

func TestCLI_Summary(t *testing.T) {
	srv := backendtest.New(nil, sampleEntries()...)
	defer srv.Close()

	res := runCLI(t, srv, "", "summary")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "CATEGORY")
	assert.Regexp(t, `Starters\s+1 tray \(serves ~10\)\s+4\s+6\s+2`, res.stdout)
	assert.Regexp(t, `Rice Items\s+.*\s+2\s+2\s+full`, res.stdout)
}

func TestCLI_List(t *testing.T) {
	srv := backendtest.New(nil, sampleEntries()...)
	defer srv.Close()

	res := runCLI(t, srv, "", "list", "-size", "2")
	require.Equal(t, exitOK, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "2 "), "most recent first: %q", lines[1])
	assert.Equal(t, "page 1 of 2 (3 entries)", lines[3])

	empty := backendtest.New(nil)
	defer empty.Close()
	res = runCLI(t, empty, "", "list")
	assert.Equal(t, "No entries yet.\n", res.stdout)
}

func TestCLI_Submit(t *testing.T) {
	srv := backendtest.New(nil, sampleEntries()...)
	defer srv.Close()

	res := runCLI(t, srv, "", "submit", "-name", "Dev", "-dish", "Pakora", "-category", "Starters", "-quantity", "10")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Quantity reduced to 2.")
	assert.Contains(t, res.stdout, "Entry saved!")
	require.Len(t, srv.Submitted(), 1)
	assert.Equal(t, 2, srv.Submitted()[0].Quantity)

	res = runCLI(t, srv, "", "submit", "-name", "Eve", "-dish", "Pulao", "-category", "Rice Items")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "category is not available")
}

func TestCLI_AdminDelete(t *testing.T) {
	srv := backendtest.New(nil, sampleEntries()...)
	defer srv.Close()

	res := runCLI(t, srv, "n\n", "admin", "delete", "-password", backendtest.Password, "-index", "1")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Delete #1 Ben: Kheer")
	assert.Contains(t, res.stdout, "Cancelled.")
	assert.Len(t, srv.Entries(), 3)

	res = runCLI(t, srv, "y\n", "admin", "delete", "-password", backendtest.Password, "-index", "1")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Entry deleted")
	assert.Len(t, srv.Entries(), 2)

	res = runCLI(t, srv, "", "admin", "delete", "-password", "wrong", "-index", "0", "-yes")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Invalid password")
	assert.Len(t, srv.Entries(), 2)
}

func TestCLI_AdminEdit(t *testing.T) {
	srv := backendtest.New(nil, sampleEntries()...)
	defer srv.Close()
	t.Setenv(EnvAdminPassword, backendtest.Password)

	res := runCLI(t, srv, "", "admin", "edit", "-index", "2", "-dish", "Pulao")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, models.Entry{Name: "Chen", Category: "Rice Items", Dish: "Pulao", Quantity: 2}, srv.Entries()[2])

	srv.FailEdits(true)
	res = runCLI(t, srv, "", "admin", "edit", "-index", "2", "-quantity", "1")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Failed to edit entry")
}

func TestCLI_AdminExport(t *testing.T) {
	srv := backendtest.New(nil)
	defer srv.Close()
	dir := t.TempDir()

	res := runCLI(t, srv, "", "admin", "export", "-password", backendtest.Password, "-out", dir)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(filepath.Join(dir, "potluck_data.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, backendtest.Export, data)
}

func TestCLI_Usage(t *testing.T) {
	srv := backendtest.New(nil)
	defer srv.Close()

	assert.Equal(t, exitUsage, runCLI(t, srv, "").code)
	assert.Equal(t, exitUsage, runCLI(t, srv, "", "bogus").code)
	assert.Equal(t, exitUsage, runCLI(t, srv, "", "admin").code)
	assert.Equal(t, exitUsage, runCLI(t, srv, "", "admin", "bogus").code)
}
