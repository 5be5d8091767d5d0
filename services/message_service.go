package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/authz"
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/metrics"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

type MessageService struct {
	base
}

// ConversationSummary is one entry of a user's inbox, derived from the
// messages they exchanged with Counterpart.
type ConversationSummary struct {
	CounterpartID uuid.UUID      `json:"counterpart_id"`
	Counterpart   *models.User   `json:"counterpart,omitempty"`
	LastMessage   models.Message `json:"last_message"`
	UnreadCount   int64          `json:"unread_count"`
}

func (s *MessageService) Send(ctx context.Context, actor *models.User, req validation.SendMessageRequest) (*models.Message, error) {
	if err := authz.Authorize(actor, authz.SendMessage); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	receiverID, err := ParseID("receiver_id", req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiverID == actor.ID {
		return nil, apperrors.Invalid("receiver_id", "cannot send a message to yourself")
	}

	var receivers int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", receiverID).Count(&receivers).Error; err != nil {
		return nil, fmt.Errorf("check receiver: %w", err)
	}
	if receivers == 0 {
		return nil, apperrors.NotFound("receiver not found")
	}

	msg := models.Message{
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		Content:    strings.TrimSpace(req.Content),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	metrics.MessagesSent.Inc()
	s.events.Publish(ctx, events.TopicMessageSent, events.MessageSent{
		MessageID: msg.ID, SenderID: msg.SenderID, ReceiverID: msg.ReceiverID,
	})
	return &msg, nil
}

// Conversation returns every message exchanged between actor and
// counterpartID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, actor *models.User, counterpartID uuid.UUID) ([]models.Message, error) {
	if err := authz.Authorize(actor, authz.ReadConversation); err != nil {
		return nil, err
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			actor.ID, counterpartID, counterpartID, actor.ID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Conversations lists actor's inbox, most recently active first.
func (s *MessageService) Conversations(ctx context.Context, actor *models.User) ([]ConversationSummary, error) {
	if err := authz.Authorize(actor, authz.ReadConversation); err != nil {
		return nil, err
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", actor.ID, actor.ID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	summaries := summarizeConversations(actor.ID, msgs)
	if len(summaries) == 0 {
		return summaries, nil
	}

	ids := make([]uuid.UUID, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, c.CounterpartID)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load counterparts: %w", err)
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range summaries {
		summaries[i].Counterpart = byID[summaries[i].CounterpartID]
	}
	return summaries, nil
}

// summarizeConversations folds msgs, ordered oldest first, into one summary
// per counterpart of me.
func summarizeConversations(me uuid.UUID, msgs []models.Message) []ConversationSummary {
	byCounterpart := make(map[uuid.UUID]*ConversationSummary)
	for i := range msgs {
		m := msgs[i]
		other := m.Counterpart(me)
		c, ok := byCounterpart[other]
		if !ok {
			c = &ConversationSummary{CounterpartID: other}
			byCounterpart[other] = c
		}
		c.LastMessage = m
		if m.ReceiverID == me && !m.IsRead {
			c.UnreadCount++
		}
	}

	out := make([]ConversationSummary, 0, len(byCounterpart))
	for _, c := range byCounterpart {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
	return out
}

// MarkRead marks messages sent by counterpartID to actor as read. Messages
// actor sent are never touched.
func (s *MessageService) MarkRead(ctx context.Context, actor *models.User, counterpartID uuid.UUID) (int64, error) {
	if err := authz.Authorize(actor, authz.ReadConversation); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", counterpartID, actor.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", actor.ID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}
