package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
	"clinicdesk/internal/policy"
	"clinicdesk/internal/repository"
)

// ConversationSummary describes one conversation from the actor's point of
// view: the counterpart profile, the most recent message (absent when the
// pair never exchanged one) and how many messages from that counterpart the
// actor has not read yet.
type ConversationSummary struct {
	User        *model.User    `json:"usuario"`
	LastMessage *model.Message `json:"ultima_mensagem"`
	UnreadCount int            `json:"mensagens_nao_lidas"`
}

// MessageService routes messages and aggregates conversations. Patients
// always converse with the single clinician; the clinician and admins address
// explicit counterparts.
type MessageService interface {
	Send(ctx context.Context, sender *model.User, recipientID uint, body string) (*model.Message, error)
	// ListMessages returns a conversation and, as a documented side effect,
	// marks every returned message addressed to the actor as read.
	ListMessages(ctx context.Context, actor *model.User, counterpartID uint) ([]model.Message, error)
	ListConversations(ctx context.Context, actor *model.User) ([]ConversationSummary, error)
}

type messageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

// NewMessageService builds a MessageService.
func NewMessageService(userRepo repository.UserRepository, messageRepo repository.MessageRepository) MessageService {
	return &messageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// Send delivers a message. Patient senders are always routed to the clinician
// regardless of any destination supplied; other senders must name a recipient.
func (s *messageService) Send(ctx context.Context, sender *model.User, recipientID uint, body string) (*model.Message, error) {
	if body == "" {
		return nil, errors.Validation("conteudo is required")
	}
	if !policy.Authorize(sender.Role, policy.ActionMessageSend, sender.ID, sender.ID) {
		return nil, errors.Forbidden("not allowed to send messages")
	}

	var recipient *model.User
	if sender.Role == model.RolePatient {
		clinician, err := s.userRepo.FindClinician(ctx)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.NotFound("no clinician registered in the system")
			}
			return nil, errors.Internal("failed to resolve clinician")
		}
		recipient = clinician
	} else {
		if recipientID == 0 {
			return nil, errors.Validation("destinatario_id is required")
		}
		found, err := s.userRepo.FindByID(ctx, recipientID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.NotFound("recipient not found")
			}
			return nil, errors.Internal("failed to resolve recipient")
		}
		recipient = found
	}

	message := &model.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, errors.Internal("failed to send message")
	}
	return message, nil
}

// ListMessages returns the actor's conversation. Patients get their clinician
// conversation oldest-first; the clinician/admin get a specific pair
// oldest-first, or every message involving them newest-first when no
// counterpart is given. Returned unread messages addressed to the actor are
// marked read exactly once; a repeated call changes nothing further.
func (s *messageService) ListMessages(ctx context.Context, actor *model.User, counterpartID uint) ([]model.Message, error) {
	if !policy.Authorize(actor.Role, policy.ActionMessageRead, actor.ID, actor.ID) {
		return nil, errors.Forbidden("not allowed to read messages")
	}

	var (
		messages []model.Message
		err      error
	)
	switch {
	case actor.Role == model.RolePatient:
		clinician, cErr := s.userRepo.FindClinician(ctx)
		if cErr != nil {
			if cErr == gorm.ErrRecordNotFound {
				return nil, errors.NotFound("no clinician registered in the system")
			}
			return nil, errors.Internal("failed to resolve clinician")
		}
		messages, err = s.messageRepo.ListBetween(ctx, actor.ID, clinician.ID)
	case counterpartID != 0:
		messages, err = s.messageRepo.ListBetween(ctx, actor.ID, counterpartID)
	default:
		messages, err = s.messageRepo.ListInvolving(ctx, actor.ID)
	}
	if err != nil {
		return nil, errors.Internal("failed to list messages")
	}

	var unreadIDs []uint
	for i := range messages {
		if messages[i].RecipientID == actor.ID && !messages[i].Read {
			unreadIDs = append(unreadIDs, messages[i].ID)
			messages[i].Read = true
		}
	}
	if len(unreadIDs) > 0 {
		if err := s.messageRepo.MarkRead(ctx, unreadIDs); err != nil {
			return nil, errors.Internal("failed to mark messages as read")
		}
	}

	return messages, nil
}

// ListConversations summarizes the actor's conversations. For the clinician
// or an admin there is one summary per distinct counterpart, ordered by the
// last message timestamp descending; summaries without any message compare as
// an empty string and therefore sort last. A patient gets the single
// clinician summary, or an empty list when no clinician account exists.
func (s *messageService) ListConversations(ctx context.Context, actor *model.User) ([]ConversationSummary, error) {
	if actor.Role == model.RolePatient {
		clinician, err := s.userRepo.FindClinician(ctx)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return []ConversationSummary{}, nil
			}
			return nil, errors.Internal("failed to resolve clinician")
		}

		messages, err := s.messageRepo.ListBetween(ctx, actor.ID, clinician.ID)
		if err != nil {
			return nil, errors.Internal("failed to list messages")
		}
		return []ConversationSummary{summarize(actor.ID, clinician, messages)}, nil
	}

	all, err := s.messageRepo.ListInvolving(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("failed to list messages")
	}

	// Messages arrive newest-first, so the first message seen per
	// counterpart is that conversation's most recent one.
	counterpartOrder := make([]uint, 0)
	lastByCounterpart := make(map[uint]*model.Message)
	unreadByCounterpart := make(map[uint]int)
	for i := range all {
		message := all[i]
		other := message.SenderID
		if other == actor.ID {
			other = message.RecipientID
		}
		if _, seen := lastByCounterpart[other]; !seen {
			counterpartOrder = append(counterpartOrder, other)
			lastByCounterpart[other] = &all[i]
		}
		if message.SenderID == other && message.RecipientID == actor.ID && !message.Read {
			unreadByCounterpart[other]++
		}
	}

	summaries := make([]ConversationSummary, 0, len(counterpartOrder))
	for _, counterpartID := range counterpartOrder {
		counterpart, err := s.userRepo.FindByID(ctx, counterpartID)
		if err != nil {
			// Counterpart account is gone; its messages no longer form a
			// listable conversation.
			continue
		}
		summaries = append(summaries, ConversationSummary{
			User:        counterpart,
			LastMessage: lastByCounterpart[counterpartID],
			UnreadCount: unreadByCounterpart[counterpartID],
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summarySortKey(summaries[i]) > summarySortKey(summaries[j])
	})
	return summaries, nil
}

// summarySortKey orders conversations by last-message time descending.
// Conversations without a message yield an empty key, which sorts last.
func summarySortKey(summary ConversationSummary) string {
	if summary.LastMessage == nil {
		return ""
	}
	return summary.LastMessage.CreatedAt.UTC().Format(time.RFC3339Nano)
}

func summarize(actorID uint, counterpart *model.User, ascending []model.Message) ConversationSummary {
	summary := ConversationSummary{User: counterpart}
	if len(ascending) > 0 {
		summary.LastMessage = &ascending[len(ascending)-1]
	}
	for _, message := range ascending {
		if message.SenderID == counterpart.ID && message.RecipientID == actorID && !message.Read {
			summary.UnreadCount++
		}
	}
	return summary
}
