package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

type TeamService struct {
	tx db.Transactor

	teams    repository.TeamRepository
	profiles repository.ProfileRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{tx: tx}
}

// CreateTeam creates a team with a fresh invite code and attaches the
// creator as its first member with the admin role.
func (t *TeamService) CreateTeam(ctx context.Context, id auth.Identity, name string, teamNumber *int) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating team", zap.String("team_name", name), zap.String("user_id", id.UserID))

	if id.OnTeam() {
		return nil, NewError(ErrorCodeAlreadyExists, "user already belongs to a team")
	}

	team := &repository.Team{
		ID:         uuid.NewString(),
		Name:       name,
		TeamNumber: teamNumber,
		InviteCode: newInviteCode(),
	}

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := t.teams.Create(txCtx, team); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				l.Warn("team already exists", zap.String("team_name", name))
				return NewError(ErrorCodeTeamExists, "team already exists")
			}
			l.Error("failed to create team", zap.String("team_name", name), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create team")
		}

		role := model.RoleAdmin
		if _, err := t.profiles.Patch(txCtx, &repository.ProfilePatch{
			ID:     id.UserID,
			TeamID: &team.ID,
			Role:   &role,
		}); err != nil {
			l.Error("failed to attach creator to team", zap.String("user_id", id.UserID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to attach creator to team")
		}

		return nil
	})

	var res *Error
	if errors.As(err, &res) {
		return nil, res
	}
	if err != nil {
		l.Error("create team transaction failed", zap.String("team_name", name), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create team")
	}

	return toModelTeam(team), nil
}

// JoinTeam attaches the caller to the team matching the invite code. A user
// belongs to at most one team.
func (t *TeamService) JoinTeam(ctx context.Context, id auth.Identity, inviteCode string) (*model.Team, *Error) {
	if id.OnTeam() {
		return nil, NewError(ErrorCodeAlreadyExists, "user already belongs to a team")
	}

	team, err := t.teams.GetByInviteCode(ctx, inviteCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeInviteInvalid, "invite code not recognized")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to look up invite code")
	}

	if _, err = t.profiles.Patch(ctx, &repository.ProfilePatch{
		ID:     id.UserID,
		TeamID: &team.ID,
	}); err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to join team")
	}

	return toModelTeam(team), nil
}

// GetTeam returns the caller's team with its member roster.
func (t *TeamService) GetTeam(ctx context.Context, id auth.Identity) (*model.Team, []*model.Profile, *Error) {
	if !id.OnTeam() {
		return nil, nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	team, err := t.teams.Get(ctx, id.TeamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		return nil, nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	profiles, err := t.profiles.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, nil, NewError(ErrorCodeUnspecified, "failed to list team members")
	}

	members := make([]*model.Profile, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, toModelProfile(p))
	}

	return toModelTeam(team), members, nil
}

// RegenerateInviteCode replaces the team's invite code. Organizers only.
func (t *TeamService) RegenerateInviteCode(ctx context.Context, id auth.Identity) (string, *Error) {
	if !id.OnTeam() {
		return "", NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}
	if !id.Role.IsOrganizer() {
		return "", NewError(ErrorCodeForbidden, "only organizers can regenerate the invite code")
	}

	code := newInviteCode()
	err := t.teams.SetInviteCode(ctx, id.TeamID, code)
	if errors.Is(err, repository.ErrNotFound) {
		return "", NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		return "", NewError(ErrorCodeUnspecified, "failed to regenerate invite code")
	}

	return code, nil
}

// SetMemberRole updates another member's role. Organizers only; the target
// must be on the caller's team.
func (t *TeamService) SetMemberRole(ctx context.Context, id auth.Identity, memberID string, role model.Role) (*model.Profile, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}
	if !id.Role.IsOrganizer() {
		return nil, NewError(ErrorCodeForbidden, "only organizers can change member roles")
	}

	member, err := t.profiles.Get(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "member not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load member")
	}
	if member.TeamID == nil || *member.TeamID != id.TeamID {
		return nil, NewError(ErrorCodeNotFound, "member not found")
	}

	updated, err := t.profiles.Patch(ctx, &repository.ProfilePatch{
		ID:   memberID,
		Role: &role,
	})
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to update member role")
	}

	return toModelProfile(updated), nil
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}

func (t *TeamService) WithProfileRepo(r repository.ProfileRepository) *TeamService {
	t.profiles = r
	return t
}

// newInviteCode produces the 8-character shareable join code.
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func toModelTeam(t *repository.Team) *model.Team {
	return &model.Team{
		ID:         t.ID,
		Name:       t.Name,
		TeamNumber: t.TeamNumber,
		InviteCode: t.InviteCode,
	}
}
