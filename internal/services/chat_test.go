package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type recordingModel struct {
	system  string
	history []models.ChatMessage
	message string
	reply   string
	err     error
	calls   int
}

func (m *recordingModel) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	m.calls++
	m.system = system
	m.history = history
	m.message = message
	return m.reply, m.err
}

func TestChatService_SplitsHistoryAndNewestMessage(t *testing.T) {
	model := &recordingModel{reply: "Siram pagi hari."}
	svc := NewChatService(model, zap.NewNop())

	messages := []models.ChatMessage{
		{Role: "user", Content: "Halo"},
		{Role: "assistant", Content: "Halo! Ada yang bisa dibantu?"},
		{Role: "user", Content: "Kapan menyiram cabai?"},
	}

	reply, err := svc.Reply(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "Siram pagi hari.", reply)
	assert.Equal(t, "Kapan menyiram cabai?", model.message)
	assert.Equal(t, messages[:2], model.history)
	assert.Contains(t, model.system, "Bahasa Indonesia")
	assert.Contains(t, model.system, "pertanian")
}

func TestChatService_Errors(t *testing.T) {
	_, err := NewChatService(&recordingModel{}, zap.NewNop()).Reply(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyConversation)

	_, err = NewChatService(nil, zap.NewNop()).Reply(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrChatUnavailable)

	upstream := errors.New("quota exceeded")
	_, err = NewChatService(&recordingModel{err: upstream}, zap.NewNop()).Reply(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, upstream)
}

func TestRateLimitedModel(t *testing.T) {
	inner := &recordingModel{reply: "ok"}
	limited := NewRateLimitedModel(inner, 0.001, 1)

	_, err := limited.Reply(context.Background(), "", nil, "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Reply(ctx, "", nil, "b")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRateLimitedModel_Unlimited(t *testing.T) {
	inner := &recordingModel{reply: "ok"}
	limited := NewRateLimitedModel(inner, 0, 0)

	for i := 0; i < 10; i++ {
		_, err := limited.Reply(context.Background(), "", nil, "x")
		require.NoError(t, err)
	}
	assert.Equal(t, 10, inner.calls)
}

func TestGeminiRole(t *testing.T) {
	assert.Equal(t, genai.Role(genai.RoleModel), geminiRole("assistant"))
	assert.Equal(t, genai.Role(genai.RoleModel), geminiRole("Model"))
	assert.Equal(t, genai.Role(genai.RoleUser), geminiRole("user"))
	assert.Equal(t, genai.Role(genai.RoleUser), geminiRole("system"))
}

func TestNewGeminiModel_RequiresKey(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), ChatConfig{})
	assert.ErrorIs(t, err, ErrChatUnavailable)
}
