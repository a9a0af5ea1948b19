//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	libsqlImage   = "ghcr.io/tursodatabase/libsql-server:latest"
	testDB        = "voice_test"
	testUser      = "voice"
	testPassword  = "voice"

	// libsql-server runs without JWT verification, so any token is accepted.
	testAuthToken = "integration-token"
)

// target is a database the schema is applied to in integration tests.
type target struct {
	name  string
	url   string
	token string
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	return container
}

// SetupPostgres starts a PostgreSQL 16 container and returns its connection URL.
// The container is terminated when the test completes.
func SetupPostgres(t *testing.T) string {
	t.Helper()

	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})

	ctx := context.Background()

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return "postgres://" + testUser + ":" + testPassword + "@" + host + ":" + port.Port() + "/" + testDB + "?sslmode=disable"
}

// SetupLibSQL starts a libsql-server container and returns its HTTP URL.
// The container is terminated when the test completes.
func SetupLibSQL(t *testing.T) string {
	t.Helper()

	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        libsqlImage,
		ExposedPorts: []string{"8080/tcp"},
		Env:          map[string]string{"SQLD_NODE": "primary"},
		WaitingFor: wait.ForHTTP("/health").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	})

	ctx := context.Background()

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	return "http://" + host + ":" + port.Port()
}

// targets starts one container per supported server and returns them.
func targets(t *testing.T) []target {
	t.Helper()

	return []target{
		{name: "postgres", url: SetupPostgres(t)},
		{name: "libsql", url: SetupLibSQL(t), token: testAuthToken},
	}
}
