package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/costatartessos/hotel-assistant/cmd/mainconfig"
	appconfig "github.com/costatartessos/hotel-assistant/internal/config"
	"github.com/costatartessos/hotel-assistant/internal/reservations"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

type bookingBody struct {
	Date         string `json:"date"`
	TimeSlot     string `json:"time_slot"`
	CustomerName string `json:"customer_name"`
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	store := reservations.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.ReservationsTable, logger)
	service := reservations.NewService(store, logger,
		reservations.WithLeadTime(cfg.SlotLeadTime),
		reservations.WithMaxLookahead(cfg.SlotLookaheadDays),
	)
	handler := reservations.NewHandler(service)
	logger.Info("starting reservations lambda", "table", cfg.ReservationsTable)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		switch evt.HTTPMethod {
		case http.MethodGet:
			return getAvailability(ctx, handler, evt), nil
		case http.MethodPost:
			return createBooking(ctx, handler, evt), nil
		default:
			return respond(400, "Unsupported HTTP method"), nil
		}
	})
}

func getAvailability(ctx context.Context, handler *reservations.Handler, evt events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	date := evt.QueryStringParameters["date"]
	if date == "" {
		return respond(400, "Date parameter is required")
	}

	result, err := handler.Availability(ctx, date)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidDate) {
			return respond(400, "Invalid date format. Use YYYY-MM-DD")
		}
		return respond(500, "Availability lookup failed")
	}
	return respondJSON(200, result)
}

func createBooking(ctx context.Context, handler *reservations.Handler, evt events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body bookingBody
	if err := json.Unmarshal([]byte(evt.Body), &body); err != nil || body.TimeSlot == "" || body.CustomerName == "" {
		return respond(400, "Invalid request body")
	}

	_, err := handler.Book(ctx, body.TimeSlot, body.CustomerName)
	switch {
	case err == nil:
		return respond(200, "Booking created successfully")
	case errors.Is(err, reservations.ErrSlotAlreadyBooked):
		return respond(409, "This time slot is already booked")
	case errors.Is(err, reservations.ErrInvalidSlot):
		return respond(400, "Invalid time slot")
	default:
		return respond(500, "Booking failed")
	}
}

func respond(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(message)
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(body)}
}

func respondJSON(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		return respond(500, "Encoding failed")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
