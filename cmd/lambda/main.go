package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	lambdapkg "github.com/christophergentle/avatarclock/internal/lambda"
	"github.com/christophergentle/avatarclock/internal/logging"
)

func main() {
	logger, err := logging.NewJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loader, err := lambdapkg.NewSSMConfigLoader(context.Background())
	if err != nil {
		logger.Fatal("Failed to create SSM config loader", zap.Error(err))
	}

	handler := lambdapkg.NewHandler(loader, lambdapkg.RunCycle, logger)
	lambda.Start(handler.Handle)
}
