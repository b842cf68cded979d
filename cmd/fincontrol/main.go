package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/cli"
)

func main() {
	_ = godotenv.Load()

	logCfg := zap.NewProductionConfig()
	logCfg.Encoding = "console"
	logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if os.Getenv("FINCONTROL_DEBUG") != "" {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = cli.NewRootCommand(logger.Sugar()).ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
