package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a ledger in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "ledger.db")}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClassify_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "booking.eml", plainEML)

	out, err := run(t, dir, "classify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "booking_confirmation -> trips")
	assert.Contains(t, out, "TR-2024-001")
	assert.NoFileExists(t, filepath.Join(dir, "ledger.db"), "dry run must not create a ledger")
}

func TestClassify_Store(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "booking.eml", plainEML)

	out, err := run(t, dir, "classify", "--store", path)
	require.NoError(t, err)
	assert.Contains(t, out, "stored")

	logs, err := run(t, dir, "logs", "--type", "email")
	require.NoError(t, err)
	assert.Contains(t, logs, "Your trip is confirmed")
}

func TestValidate_ReportsRejectedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "expenses.csv",
		"Date,Amount,Recipient,Category,Notes\n2024-01-15,40,Shell,Fuel,\n2024-01-15,-10,Acme,Unknown,test\n")

	out, err := run(t, dir, "validate", "expenses", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 rows rejected")
	assert.Contains(t, out, "2 rows, 1 valid, 1 rejected")
	assert.Contains(t, out, "invalid or missing amount")
}

func TestValidate_UnknownType(t *testing.T) {
	_, err := run(t, t.TempDir(), "validate", "payroll", "x.csv")
	assert.ErrorContains(t, err, "unknown import type")
}

func TestImport_StoresValidRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "earnings.csv",
		"Date,Amount,Source,Description\n2024-01-15,125.50,Turo,payout\n2024-01-16,abc,Turo,payout\n")

	out, err := run(t, dir, "import", "earnings", path)
	require.NoError(t, err)
	assert.Contains(t, out, "stored 1 earnings records")

	logs, err := run(t, dir, "logs")
	require.NoError(t, err)
	assert.Contains(t, logs, "earnings.csv")
}

func TestImport_StructuralFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "earnings.csv", "Date,Amount\n2024-01-15,5\n")

	_, err := run(t, dir, "import", "earnings", path)
	assert.ErrorContains(t, err, "VAL004")
}

func TestCategories_AddAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "categories", "add", "Car Wash")
	require.NoError(t, err)

	out, err := run(t, dir, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Car Wash")
	assert.Contains(t, out, "Fuel")
}

func TestRules_ListsBuiltIns(t *testing.T) {
	out, err := run(t, t.TempDir(), "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "booking_confirmation")
	assert.Contains(t, out, "payment_notification")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestUserError(t *testing.T) {
	plain := errors.New("open ledger.db: permission denied")
	assert.Same(t, plain, userError(plain), "unknown errors keep their detail")

	structural := &core.StructuralError{Message: "missing required columns", Missing: []string{"source"}}
	got := userError(structural)
	assert.Contains(t, got.Error(), "Code: VAL004")
	assert.Contains(t, got.Error(), "Check that all required columns are present")
}
