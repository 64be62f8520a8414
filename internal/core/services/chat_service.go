package services

import (
	"context"
	"fmt"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/core/domain"
)

// DefaultChatLimit caps the number of messages returned per fetch.
const DefaultChatLimit = 200

// ChatService handles the single group chat.
type ChatService struct {
	chatRepo *repositories.ChatRepository
}

// NewChatService creates a new chat service
func NewChatService(chatRepo *repositories.ChatRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// Post appends a message to the group chat
func (s *ChatService) Post(ctx context.Context, sender, message string) (*models.ChatMessage, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	chatMessage := &models.ChatMessage{
		Sender:  sender,
		Message: message,
		Time:    time.Now().Format("15:04"),
		IsSent:  true,
	}
	if err := s.chatRepo.Create(ctx, chatMessage); err != nil {
		return nil, err
	}
	return chatMessage, nil
}

// List returns the chat history, oldest first
func (s *ChatService) List(ctx context.Context) ([]*models.ChatMessage, error) {
	return s.chatRepo.List(ctx, DefaultChatLimit)
}
