package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	bartypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Client is the generative backend boundary. Invoke streams fragments for
// one conversational turn; consumers may abandon the channel as soon as a
// short-circuit condition is met. EndSession invalidates any server-side
// session state for the key.
type Client interface {
	Invoke(ctx context.Context, sessionID, inputText string, attrs map[string]string) (<-chan Fragment, error)
	EndSession(ctx context.Context, sessionID string) error
}

type agentAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// BedrockAgentClient talks to a Bedrock agent alias.
type BedrockAgentClient struct {
	api     agentAPI
	agentID string
	aliasID string
	logger  *logging.Logger
}

var _ Client = (*BedrockAgentClient)(nil)

// NewBedrockAgentClient wires the client around the SDK API surface.
func NewBedrockAgentClient(api agentAPI, agentID, aliasID string, logger *logging.Logger) *BedrockAgentClient {
	if api == nil {
		panic("assistant: bedrock agent client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BedrockAgentClient{api: api, agentID: agentID, aliasID: aliasID, logger: logger}
}

// Invoke starts one agent turn and returns a channel of decoded fragments.
// The channel is closed when the stream ends; a terminal stream failure is
// delivered as a fragment with Err set.
func (c *BedrockAgentClient) Invoke(ctx context.Context, sessionID, inputText string, attrs map[string]string) (<-chan Fragment, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("assistant: session id is required")
	}

	input := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
	}
	if len(attrs) > 0 {
		input.SessionState = &bartypes.SessionState{SessionAttributes: attrs}
	}

	out, err := c.api.InvokeAgent(ctx, input)
	if err != nil {
		return nil, err
	}

	fragments := make(chan Fragment, 16)
	go func() {
		defer close(fragments)

		stream := out.GetStream()
		if stream == nil {
			fragments <- Fragment{Err: errors.New("assistant: agent stream is nil")}
			return
		}
		defer stream.Close()

		for event := range stream.Events() {
			chunk, ok := event.(*bartypes.ResponseStreamMemberChunk)
			if !ok {
				continue
			}
			if len(chunk.Value.Bytes) == 0 {
				continue
			}
			select {
			case fragments <- DecodeFragment(chunk.Value.Bytes):
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case fragments <- Fragment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return fragments, nil
}

// EndSession invalidates the server-side session, so the next turn starts
// from a clean slate. The reply stream is drained and discarded.
func (c *BedrockAgentClient) EndSession(ctx context.Context, sessionID string) error {
	out, err := c.api.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String("Hi"),
		EndSession:   aws.Bool(true),
	})
	if err != nil {
		return err
	}

	if stream := out.GetStream(); stream != nil {
		for range stream.Events() {
		}
		if err := stream.Err(); err != nil {
			c.logger.Warn("end-session stream error", "session_id", sessionID, "error", err)
		}
		return stream.Close()
	}
	return nil
}
