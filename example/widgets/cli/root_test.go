package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/cli"
	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, key := range []string{config.EnvAdapter, config.EnvLogLevel, config.EnvTelemetry, config.EnvPalette} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	var out bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func Test_HooksCommand_ListsRegisteredHooks(t *testing.T) {
	// act
	out, err := runCLI(t, "hooks")

	// assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 8)
	assert.Contains(t, lines, "before_colors_add")
	assert.Contains(t, lines, "stock_changed")
}

func Test_ShowCommand_When_IDIsInvalid_Then_Error(t *testing.T) {
	_, err := runCLI(t, "show", "not-a-uuid")

	assert.ErrorContains(t, err, `invalid widget id "not-a-uuid"`)
}

func Test_SetStockCommand_When_StockIsNotANumber_Then_Error(t *testing.T) {
	_, err := runCLI(t, "set-stock", "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", "lots")

	assert.ErrorContains(t, err, `invalid stock "lots"`)
}

func Test_Commands_When_ArgumentsAreMissing_Then_Error(t *testing.T) {
	for _, args := range [][]string{{"create"}, {"colors", "add", "only-id"}, {"activate"}} {
		_, err := runCLI(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}
