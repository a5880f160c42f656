package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BUS_DRIVER", "memory")
	t.Setenv("LOG_MODE", "production")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "fulfillment dev (none)\n", out)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"version", "serve", "notify", "create-admin"})
}

func TestCreateAdminCmd(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "create-admin", "--email", "ops@example.com", "--password", "correct-horse")

	require.NoError(t, err)
	assert.Contains(t, out, "admin ops@example.com created")
}

func TestCreateAdminCmd_RequiresFlags(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "create-admin", "--email", "ops@example.com")

	assert.ErrorContains(t, err, "password")
}

func TestCreateAdminCmd_RejectsShortPassword(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "create-admin", "--email", "ops@example.com", "--password", "short")

	assert.Error(t, err)
}

func TestNotifyCmd_NeedsKafka(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "notify")

	assert.ErrorContains(t, err, "needs the kafka bus")
}

func TestServeCmd_NotifyNeedsWatermill(t *testing.T) {
	memoryEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")

	_, err := run(t, "serve", "--notify")

	assert.ErrorContains(t, err, "watermill")
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := bootstrap(context.Background(), "")

	assert.ErrorContains(t, err, "JWT_SECRET")
}
