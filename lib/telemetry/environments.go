package telemetry

import (
	"context"
	"os"
	"testing"

	"mjjbox-checkin/lib/configutil"
)

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it will then use it as a config to setup
// trace exporting. a missing file is not an error: the run proceeds
// without an exporter.
func SetupFromEnv(ctx context.Context, serviceName string) (Instance, error) {
	c, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		return Instance{}, nil
	}
	if err != nil {
		return Instance{}, err
	}
	return setup(ctx, serviceName, c)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(t testing.TB, serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	instance, err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		t.Fatal(err)
	}

	return func() {
		err := instance.Shutdown(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}
}
