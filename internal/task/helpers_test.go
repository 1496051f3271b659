package task

import (
	"log/slog"

	"github.com/museworks/muse-api/internal/testutils"
)

func testLogger() (*slog.Logger, *testutils.CaptureHandler) {
	return testutils.NewCaptureLogger()
}
