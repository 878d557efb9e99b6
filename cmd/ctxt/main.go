package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/temirov/ctxt/internal/cli"
	"github.com/temirov/ctxt/internal/utils"
	"go.uber.org/zap"
)

// main is the entry point for the ctxt command.
func main() {
	loggerLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(loggerLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if applicationExecutionError := cli.Execute(ctx, loggerInstance, &loggerLevel); applicationExecutionError != nil {
		stop()
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
