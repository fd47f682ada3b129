package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var (
	ErrEmptyConversation = errors.New("conversation has no messages")
	ErrChatUnavailable   = errors.New("chat model is not configured")
)

// ChatErrorMessage is shown to users whenever a reply cannot be produced.
const ChatErrorMessage = "Maaf, FarmLens Assistant sedang mengalami gangguan. Silakan coba lagi nanti."

const farmingPersona = `Kamu adalah FarmLens Assistant, asisten pertanian perkotaan yang ramah dan praktis.
Tugasmu membantu petani kota di Indonesia: budidaya sayur dan buah di lahan sempit, hidroponik, vertikultur, pengendalian hama dan penyakit, pemupukan, cuaca, panen, dan pemasaran hasil kebun.
Jawab hanya pertanyaan seputar pertanian dan berkebun. Jika pertanyaan di luar topik tersebut, tolak dengan sopan dan arahkan kembali ke topik pertanian.
Selalu jawab dalam Bahasa Indonesia yang sederhana, ringkas, dan berikan langkah yang bisa langsung dipraktikkan.`

// ChatModel produces one reply for a conversation.
type ChatModel interface {
	Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error)
}

// ChatConfig is the explicit configuration of the hosted model.
type ChatConfig struct {
	APIKey    string
	Model     string
	RateLimit float64
	RateBurst int
}

// GeminiModel talks to Google's Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, cfg ChatConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrChatUnavailable
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{client: client, model: cfg.Model}, nil
}

func (m *GeminiModel) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Content, geminiRole(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty reply")
	}
	return text, nil
}

func geminiRole(role string) genai.Role {
	switch strings.ToLower(role) {
	case "assistant", "model", "bot":
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}

// RateLimitedModel throttles calls to the wrapped model.
type RateLimitedModel struct {
	model   ChatModel
	limiter *rate.Limiter
}

func NewRateLimitedModel(model ChatModel, rps float64, burst int) *RateLimitedModel {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedModel{
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *RateLimitedModel) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.model.Reply(ctx, system, history, message)
}

// ChatService primes every conversation with the farming persona and asks
// the model to answer the newest message.
type ChatService struct {
	model  ChatModel
	logger *zap.Logger
}

// NewChatService accepts a nil model; Reply then fails with
// ErrChatUnavailable.
func NewChatService(model ChatModel, logger *zap.Logger) *ChatService {
	return &ChatService{model: model, logger: logger}
}

func (s *ChatService) Reply(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}
	if s.model == nil {
		return "", ErrChatUnavailable
	}

	last := messages[len(messages)-1]
	history := messages[:len(messages)-1]

	reply, err := s.model.Reply(ctx, farmingPersona, history, last.Content)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Chat reply generated",
		zap.Int("history", len(history)),
		zap.Int("reply_length", len(reply)))
	return reply, nil
}
