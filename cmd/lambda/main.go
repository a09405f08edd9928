package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	httpadapter "github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/upskillpro/backend/infrastructure/config"
	"github.com/upskillpro/backend/infrastructure/di"
	"github.com/upskillpro/backend/pkg/observability"
)

var adapter *httpadapter.HandlerAdapterV2

// init runs once per cold start and builds the full object graph.
func init() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	adapter = httpadapter.NewV2(container.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
