package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const maxMessageLength = 5000

type MessageService struct {
	messages    *repositories.MessageRepository
	connections *repositories.ConnectionRepository
	profiles    *repositories.ProfileRepository
	notifier    Notifier
	baseURL     string
	now         func() time.Time
}

func NewMessageService(
	messages *repositories.MessageRepository,
	connections *repositories.ConnectionRepository,
	profiles *repositories.ProfileRepository,
	notifier Notifier,
	baseURL string,
) *MessageService {
	return &MessageService{
		messages:    messages,
		connections: connections,
		profiles:    profiles,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         time.Now,
	}
}

// List returns the conversation between me and withID, newest first
func (s *MessageService) List(ctx context.Context, me *gormModels.Profile, withID string, page, limit int) (*dtos.Paginated[dtos.MessageView], error) {
	withID = strings.TrimSpace(withID)
	if withID == "" {
		return nil, invalid("Query parameter 'with' is required")
	}

	p, page, limit := Pagination(page, limit)
	msgs, total, err := s.messages.ListBetween(ctx, me.ID, withID, p)
	if err != nil {
		return nil, err
	}

	items := make([]dtos.MessageView, 0, len(msgs))
	for i := range msgs {
		items = append(items, toMessageView(&msgs[i]))
	}
	return &dtos.Paginated[dtos.MessageView]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Send requires an accepted connection between sender and recipient
func (s *MessageService) Send(ctx context.Context, me *gormModels.Profile, req dtos.SendMessageRequest) (*dtos.MessageView, error) {
	recipientID := strings.TrimSpace(req.RecipientID)
	content := strings.TrimSpace(req.Content)
	if recipientID == "" || content == "" {
		return nil, invalid(constants.MsgMissingFields)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, invalidf("Message must be at most %d characters", maxMessageLength)
	}
	if recipientID == me.ID {
		return nil, invalid("You cannot message yourself")
	}

	connected, err := s.connections.AreConnected(ctx, me.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, forbidden(constants.MsgNotConnected)
	}

	m := &gormModels.Message{
		SenderID:    me.ID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, MessageJob(me, recipientID, s.baseURL))

	v := toMessageView(m)
	return &v, nil
}

// MarkRead is allowed for the recipient only
func (s *MessageService) MarkRead(ctx context.Context, me *gormModels.Profile, id string) error {
	if err := s.messages.MarkRead(ctx, id, me.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Message not found")
		}
		return err
	}
	return nil
}
