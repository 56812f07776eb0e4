package components

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/harunnryd/mimir/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWorkerComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewStoreWorkerComponent(config.VectorConfig{
		Path:        filepath.Join(t.TempDir(), "vectors"),
		LockTimeout: "1s",
		LockRetry:   "10ms",
	}, false)

	assert.Error(t, comp.Health(ctx))
	assert.Nil(t, comp.Worker())

	require.NoError(t, comp.Init(ctx))
	require.NotNil(t, comp.Worker())
	assert.EqualError(t, comp.Health(ctx), "not started")

	require.NoError(t, comp.Start(ctx))
	assert.NoError(t, comp.Health(ctx))

	require.NoError(t, comp.Stop(ctx))
	assert.Error(t, comp.Health(ctx))
}

func TestStoreWorkerComponent_StartBeforeInit(t *testing.T) {
	comp := NewStoreWorkerComponent(config.VectorConfig{}, false)
	assert.Error(t, comp.Start(context.Background()))
	assert.NoError(t, comp.Stop(context.Background()))
}

func TestHTTPServerComponent_ServesAndStops(t *testing.T) {
	ctx := context.Background()
	factory := func(context.Context) (http.Handler, error) {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "pong")
		}), nil
	}

	comp := NewHTTPServerComponent(config.ServerConfig{Port: 0, ShutdownTimeout: "1s"}, factory, StoreWorkerName)
	assert.Equal(t, []string{StoreWorkerName}, comp.Dependencies())

	require.NoError(t, comp.Init(ctx))
	require.NoError(t, comp.Start(ctx))
	require.NotEmpty(t, comp.Addr())
	assert.NoError(t, comp.Health(ctx))

	resp, err := http.Get("http://" + comp.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, comp.Stop(ctx))
	assert.Error(t, comp.Health(ctx))
}

func TestHTTPServerComponent_FactoryError(t *testing.T) {
	comp := NewHTTPServerComponent(config.ServerConfig{}, func(context.Context) (http.Handler, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, comp.Init(context.Background()), assert.AnError)
	assert.Error(t, comp.Start(context.Background()))
}

func TestHTTPServerComponent_DependenciesAreCopied(t *testing.T) {
	deps := []string{StoreWorkerName}
	comp := NewHTTPServerComponent(config.ServerConfig{}, nil, deps...)
	deps[0] = "Mutated"

	got := comp.Dependencies()
	got[0] = "MutatedAgain"
	assert.Equal(t, []string{StoreWorkerName}, comp.Dependencies())
}
