// Package testing switches glreport into test mode when imported, so
// packages under test skip request logging and keep log output terse.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var setup sync.Once

func enableTestMode() {
	setup.Do(func() {
		_ = os.Setenv("GLREPORT_TEST_MODE", "1")
		for key, value := range map[string]string{"LOG_FORMAT": "text", "LOG_LEVEL": "warn"} {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	enableTestMode()
}

// TestMain can be assigned from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	enableTestMode()
	os.Exit(m.Run())
}
