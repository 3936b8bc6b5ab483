// Package agent runs one conversational turn against a hosted LLM: it sends
// the instruction, the session history and the new user message, executes any
// tool calls the model requests, and returns the final text reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// ToolExecutor is the boundary between the agent and its tool registry.
type ToolExecutor interface {
	Definitions() []openai.Tool
	Execute(ctx context.Context, name, arguments string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Instruction string
	// MaxSteps bounds the completion/tool-call loop within one turn.
	MaxSteps int
	// MaxToolRetries bounds how many failed tool calls are reflected back
	// to the model before the turn is aborted.
	MaxToolRetries int
}

type Agent struct {
	client         *openai.Client
	model          string
	instruction    string
	tools          ToolExecutor
	maxSteps       int
	maxToolRetries int
}

var ErrNoResponse = errors.New("model returned no choices")

func New(cfg Config, tools ToolExecutor) *Agent {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 10
	}
	maxToolRetries := cfg.MaxToolRetries
	if maxToolRetries <= 0 {
		maxToolRetries = 3
	}
	return &Agent{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          cfg.Model,
		instruction:    cfg.Instruction,
		tools:          tools,
		maxSteps:       maxSteps,
		maxToolRetries: maxToolRetries,
	}
}

// Run executes one turn. It returns the final reply text and the updated
// history (tool traffic included) to persist in the session.
func (a *Agent) Run(ctx context.Context, history []openai.ChatCompletionMessage, user openai.ChatCompletionMessage) (string, []openai.ChatCompletionMessage, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, history...)
	msgs = append(msgs, user)

	toolFailures := 0
	for step := 0; step < a.maxSteps; step++ {
		req := openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: a.withInstruction(msgs),
			Tools:    a.tools.Definitions(),
		}
		resp, err := a.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", history, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", history, ErrNoResponse
		}

		msg := resp.Choices[0].Message
		msgs = append(msgs, msg)

		if len(msg.ToolCalls) == 0 {
			return msg.Content, msgs, nil
		}

		for _, call := range msg.ToolCalls {
			slog.InfoContext(ctx, "Executing tool call",
				"tool", call.Function.Name, "step", step)
			result, err := a.tools.Execute(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				toolFailures++
				if toolFailures > a.maxToolRetries {
					return "", history, fmt.Errorf("tool %s failed %d times: %w", call.Function.Name, toolFailures, err)
				}
				slog.WarnContext(ctx, "Tool call failed, reflecting back to model",
					"tool", call.Function.Name, "error", err, "failures", toolFailures)
				result = fmt.Sprintf("Tool call failed: %v. Reflect on the error and try again.", err)
			}
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", history, fmt.Errorf("no final response after %d steps", a.maxSteps)
}

func (a *Agent) withInstruction(msgs []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: a.instruction,
	})
	return append(out, msgs...)
}

// TextMessage builds a plain-text user message.
func TextMessage(text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	}
}

// ImageMessage builds a user message carrying an inline base64 image plus an
// accompanying instruction or caption.
func ImageMessage(caption, mimeType, imageBase64 string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64),
				},
			},
			{
				Type: openai.ChatMessagePartTypeText,
				Text: caption,
			},
		},
	}
}
