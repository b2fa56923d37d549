package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/dto"
	"google.golang.org/api/option"
)

// ErrAssistantUnavailable is returned when no model is configured.
var ErrAssistantUnavailable = errors.New("news assistant is not configured")

const newsAssistantInstruction = "You help kindergarten staff write short, warm news posts for parents. " +
	"Answer in plain text. Keep posts under 200 words and never invent dates, names or fees " +
	"that the staff member did not give you."

// NewsAssistant drafts news posts from a conversation.
type NewsAssistant interface {
	Reply(ctx context.Context, history []dto.ChatTurn, message string) (string, error)
}

type GeminiAssistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAssistant returns ErrAssistantUnavailable when no API key is set.
func NewGeminiAssistant(ctx context.Context, cfg *config.Config) (*GeminiAssistant, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, ErrAssistantUnavailable
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Gemini.Model)
	temp := float32(0.7)
	model.Temperature = &temp
	model.SystemInstruction = genai.NewUserContent(genai.Text(newsAssistantInstruction))

	return &GeminiAssistant{client: client, model: model}, nil
}

func (a *GeminiAssistant) Reply(ctx context.Context, history []dto.ChatTurn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	chat := a.model.StartChat()
	for _, turn := range history {
		chat.History = append(chat.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (a *GeminiAssistant) Close() error {
	return a.client.Close()
}
