package testutil

import (
	"os"
	"testing"
)

// MustSetTestEnvironment sets GO_ENV to test so config.Load never picks up a
// development or production .env file. Use it in suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}
