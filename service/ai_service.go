package service

import (
	"context"

	"github.com/ragforge/pdfrag/types"
)

type AIService interface {
	Chat(ctx context.Context, messages []types.Message) (*types.Message, error)
	ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error
}
