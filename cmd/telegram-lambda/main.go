package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/costatartessos/hotel-assistant/cmd/mainconfig"
	"github.com/costatartessos/hotel-assistant/internal/app/bootstrap"
	appconfig "github.com/costatartessos/hotel-assistant/internal/config"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	handler, err := bootstrap.New(cfg, awsCfg, nil, logger).Telegram()
	if err != nil {
		logger.Error("failed to initialize telegram bot", "error", err)
		os.Exit(1)
	}
	logger.Info("starting telegram webhook lambda")

	lambda.Start(func(ctx context.Context, evt events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if evt.HTTPMethod != http.MethodPost {
			return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Bad request"}, nil
		}
		body, err := decodeBody(evt)
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Bad request"}, nil
		}
		status, respBody := handler.HandleBody(ctx, body)
		return events.APIGatewayProxyResponse{StatusCode: status, Body: respBody}, nil
	})
}

func decodeBody(evt events.APIGatewayProxyRequest) ([]byte, error) {
	if evt.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(evt.Body)
	}
	return []byte(evt.Body), nil
}
