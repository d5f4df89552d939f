package main

import (
	"context"
	"log/slog"

	"mariinsky-counter/cmd/mariinsky-cli/commands"
	"mariinsky-counter/lib/osutil"
	"mariinsky-counter/lib/telemetry"
)

func main() {
	ctx, stop := osutil.SignalContext()
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "mariinsky-cli")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
