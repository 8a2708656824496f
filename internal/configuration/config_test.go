package configuration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MONGODB_URI", "MONGODB_DB", "APP_PORT", "SOCKET_PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"mongo": {"uri": "mongodb://localhost:27017", "database": "skills"},
		"server": {"app_port": 9090},
		"poll": {"thread_interval": "1500ms"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "skills", cfg.ChatDatabase.Database)
	assert.Equal(t, "messages", cfg.ChatDatabase.MessagesCollection)
	assert.Equal(t, 9090, cfg.Server.AppPort)
	assert.Equal(t, 8081, cfg.Server.SocketPort)
	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.ThreadInterval.Duration)
	assert.Equal(t, 5*time.Second, cfg.Poll.InboxInterval.Duration)
}

func TestLoadConfigEnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("MONGODB_DB", "from_env")
	t.Setenv("SOCKET_PORT", "7000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.ChatDatabase.Uri)
	assert.Equal(t, "from_env", cfg.ChatDatabase.Database)
	assert.Equal(t, 7000, cfg.Server.SocketPort)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "MongoDB uri")

	_, err = LoadConfig(writeConfig(t, `{"mongo": {"uri": "mongodb://x"}, "poll": {"inbox_interval": "soon"}}`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `{"mongo": {"uri": "mongodb://x"}, "poll": {"inbox_interval": "-1s"}}`))
	assert.ErrorContains(t, err, "poll intervals")

	t.Setenv("MONGODB_URI", "mongodb://x")
	t.Setenv("APP_PORT", "eighty")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "APP_PORT")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestPrepareDatabaseReleasesClientOnIndexFailure(t *testing.T) {
	// nothing listens on port 1, so server selection fails fast
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cols := Default().ChatDatabase
	err = prepareDatabase(ctx, client.Database("campus"), collectionsOf(cols), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure indexes")

	// a second disconnect reports the client as already closed
	assert.ErrorIs(t, client.Disconnect(context.Background()), mongo.ErrClientDisconnected)
}
