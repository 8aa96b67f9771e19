// logger.go
package abrunner

import (
	"os"

	"github.com/baditaflorin/l"

	stdlogger "github.com/baditaflorin/go_ab_runner/internal/adapters/logger"
)

// createDefaultLogger returns the text logger RunPage uses when the caller
// supplies none.
func createDefaultLogger() (l.Logger, error) {
	return l.NewStandardFactory().CreateLogger(stdlogger.DefaultConfig(os.Stdout))
}
