// Package bootstrap wires the application stacks from configuration so the
// Lambda entrypoints and the local server share identical assembly.
package bootstrap

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/costatartessos/hotel-assistant/internal/assistant"
	"github.com/costatartessos/hotel-assistant/internal/channels/telegram"
	"github.com/costatartessos/hotel-assistant/internal/channels/whatsapp"
	"github.com/costatartessos/hotel-assistant/internal/chat"
	appconfig "github.com/costatartessos/hotel-assistant/internal/config"
	"github.com/costatartessos/hotel-assistant/internal/conversation"
	"github.com/costatartessos/hotel-assistant/internal/guests"
	"github.com/costatartessos/hotel-assistant/internal/observability/metrics"
	"github.com/costatartessos/hotel-assistant/internal/reservations"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Stack holds the channel-independent services. Channel handlers are built
// on top of it per binary.
type Stack struct {
	Assistant    assistant.Client
	Reservations *reservations.Service
	Spa          *reservations.Handler
	Guests       *guests.Directory
	Directory    chat.Directory
	Registry     *chat.Registry
	Metrics      *metrics.ChatMetrics
	Logger       *logging.Logger

	cfg *appconfig.Config
}

// New assembles the shared services from config and an initialized AWS SDK
// config.
func New(cfg *appconfig.Config, awsCfg aws.Config, m *metrics.ChatMetrics, logger *logging.Logger) *Stack {
	if cfg == nil {
		panic("bootstrap: config cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	store := reservations.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.ReservationsTable, logger)
	resv := reservations.NewService(store, logger,
		reservations.WithLeadTime(cfg.SlotLeadTime),
		reservations.WithMaxLookahead(cfg.SlotLookaheadDays),
	)

	backend := assistant.NewBedrockAgentClient(
		bedrockagentruntime.NewFromConfig(awsCfg),
		cfg.AgentID,
		cfg.AgentAliasID,
		logger,
	)

	return &Stack{
		Assistant:    backend,
		Reservations: resv,
		Spa:          reservations.NewHandler(resv),
		Guests:       guests.NewSampleDirectory(),
		Directory:    chat.NewMemoryDirectory(),
		Registry:     chat.NewRegistry(),
		Metrics:      m,
		Logger:       logger,
		cfg:          cfg,
	}
}

// WhatsApp builds the WhatsApp webhook handler with its own orchestrator,
// sending replies through the Cloud API.
func (s *Stack) WhatsApp() *whatsapp.WebhookHandler {
	client := whatsapp.NewClient(s.cfg.WhatsAppToken, s.cfg.WhatsAppPhoneID, s.cfg.WhatsAppAPIVersion)
	adapter := whatsapp.NewAdapter(client, s.Logger)
	orchestrator := conversation.NewService(s.Assistant, s.Reservations, s.Guests, adapter, s.Logger,
		conversation.WithMetrics(s.Metrics))
	normalizer := whatsapp.NewNormalizer(s.Directory, s.Registry, s.Logger)
	return whatsapp.NewWebhookHandler(normalizer, orchestrator, s.cfg.WhatsAppVerifyToken, s.Metrics, s.Logger)
}

// Telegram builds the Telegram webhook handler. It talks to the Bot API at
// construction time to learn the bot's own identity.
func (s *Stack) Telegram() (*telegram.WebhookHandler, error) {
	bot, err := tgbotapi.NewBotAPI(s.cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: telegram bot: %w", err)
	}
	botContact := chat.Contact{
		ChannelID:   strconv.FormatInt(bot.Self.ID, 10),
		DisplayName: bot.Self.UserName,
	}

	adapter := telegram.NewAdapter(bot, s.Logger)
	orchestrator := conversation.NewService(s.Assistant, s.Reservations, s.Guests, adapter, s.Logger,
		conversation.WithMetrics(s.Metrics))
	normalizer := telegram.NewNormalizer(botContact, s.Directory, s.Registry, s.Logger)
	return telegram.NewWebhookHandler(normalizer, adapter, orchestrator, s.Metrics, s.Logger), nil
}

// SpaHTTP builds the reservations HTTP handler.
func (s *Stack) SpaHTTP() *reservations.HTTPHandler {
	return reservations.NewHTTPHandler(s.Spa, s.Metrics, s.Logger)
}
