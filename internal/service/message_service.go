package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

type MessageService struct {
	messages repository.MessageRepository
}

func NewMessageService() *MessageService {
	return &MessageService{}
}

func (s *MessageService) Post(ctx context.Context, id auth.Identity, in *model.Message) (*model.Message, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "join a team to post messages")
	}

	if in.MessageType == "" {
		in.MessageType = model.MessageChat
	}

	msg := &repository.Message{
		ID:               uuid.NewString(),
		TeamID:           id.TeamID,
		UserID:           id.UserID,
		Content:          in.Content,
		MessageType:      in.MessageType,
		TaskID:           in.TaskID,
		CarpoolID:        in.CarpoolID,
		ResourceCategory: in.ResourceCategory,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "linked record not found")
		}
		l.Error("failed to post message", zap.String("team_id", id.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to post message")
	}

	return toModelMessage(msg), nil
}

func (s *MessageService) List(ctx context.Context, id auth.Identity) ([]*model.Message, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	repoMessages, err := s.messages.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list messages")
	}

	messages := make([]*model.Message, 0, len(repoMessages))
	for _, m := range repoMessages {
		messages = append(messages, toModelMessage(m))
	}
	return messages, nil
}

// SetPinned toggles a message's pinned flag. Organizers only.
func (s *MessageService) SetPinned(ctx context.Context, id auth.Identity, messageID string, pinned bool) (*model.Message, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}
	if !id.Role.IsOrganizer() {
		return nil, NewError(ErrorCodeForbidden, "only organizers can pin messages")
	}

	msg, err := s.messages.SetPinned(ctx, id.TeamID, messageID, pinned)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "message not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to update message")
	}

	return toModelMessage(msg), nil
}

func (s *MessageService) WithMessageRepo(r repository.MessageRepository) *MessageService {
	s.messages = r
	return s
}

func toModelMessage(m *repository.Message) *model.Message {
	return &model.Message{
		ID:               m.ID,
		TeamID:           m.TeamID,
		UserID:           m.UserID,
		Content:          m.Content,
		MessageType:      m.MessageType,
		TaskID:           m.TaskID,
		CarpoolID:        m.CarpoolID,
		ResourceCategory: m.ResourceCategory,
		IsPinned:         m.IsPinned,
		CreatedAt:        m.CreatedAt,
	}
}
