package common

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BackendImageEnv names the analysis backend image the container suite runs.
const BackendImageEnv = "KRXALERT_TEST_BACKEND_IMAGE"

// backendPort is where the analysis service listens inside its container.
const backendPort = "20000/tcp"

// StartBackend runs the analysis backend container and returns its base URL.
// The test is skipped when no image is configured.
func StartBackend(t *testing.T) string {
	t.Helper()

	image := os.Getenv(BackendImageEnv)
	if image == "" {
		t.Skipf("%s not set; skipping container test", BackendImageEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := testcontainers.Run(ctx, image,
		testcontainers.WithExposedPorts(backendPort),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(backendPort),
				wait.ForHTTP("/health").WithPort(backendPort).WithStartupTimeout(90*time.Second),
			),
		),
	)
	if err != nil {
		t.Fatalf("failed to start backend container %s: %v", image, err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate backend container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get backend host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, backendPort)
	if err != nil {
		t.Fatalf("failed to get backend port: %v", err)
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}
