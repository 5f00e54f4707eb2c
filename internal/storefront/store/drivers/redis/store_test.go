package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	redisstore "github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/redis"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a throwaway redis and returns its address.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("STOREFRONT_INTEGRATION") != "1" {
		t.Skip("set STOREFRONT_INTEGRATION=1 to run docker-backed tests")
	}

	addr := setupRedisContainer(t)

	n := 0
	storetest.Run(t, func(t *testing.T) store.Store {
		client, err := redisstore.NewRedisClient(addr, "", 0)
		require.NoError(t, err)

		// Separate prefix per subtest so they don't see each other's keys
		n++
		s := redisstore.NewStore(client, fmt.Sprintf("test:%d:", n))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
