// Command check serves the license API from AWS Lambda behind an API
// Gateway HTTP API.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"licensedesk.com/licensedesk/bootstrap"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/lambdas/check/helper"
	"licensedesk.com/licensedesk/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Must(cfg.Environment, cfg.Logging.Level)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// connection is reused across warm invocations
	app, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	engine := app.Router()

	lambda.Start(func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return helper.Serve(ctx, engine, event)
	})
}
