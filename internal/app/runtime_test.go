package app

import "testing"

func TestRefreshTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)

	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatalf("expected test mode for %q", "true")
	}

	t.Setenv(testModeEnv, "nope")
	RefreshTestMode()
	if InTestMode() {
		t.Fatalf("unparseable value must disable test mode")
	}
}
