package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// BrokenTransactor runs the function but fails the commit.
type BrokenTransactor struct{}

func (b *BrokenTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errors.New("commit failed")
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *repository.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) Get(ctx context.Context, teamID string) (*repository.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) GetByInviteCode(ctx context.Context, code string) (*repository.Team, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) SetInviteCode(ctx context.Context, teamID, code string) error {
	args := m.Called(ctx, teamID, code)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *repository.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Get(ctx context.Context, userID string) (*repository.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*repository.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) Patch(ctx context.Context, patch *repository.ProfilePatch) (*repository.Profile, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Profile, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Profile), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *repository.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Get(ctx context.Context, eventID string) (*repository.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Event), args.Error(1)
}

func (m *MockEventRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Event, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Event), args.Error(1)
}

func (m *MockEventRepository) UpsertRSVP(ctx context.Context, rsvp *repository.RSVP) error {
	args := m.Called(ctx, rsvp)
	return args.Error(0)
}

func (m *MockEventRepository) CountYesRSVPs(ctx context.Context, teamID string) (map[string]int, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockEventRepository) InsertAttendance(ctx context.Context, att *repository.Attendance) (*repository.Attendance, error) {
	args := m.Called(ctx, att)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Attendance), args.Error(1)
}

func (m *MockEventRepository) ListAttendance(ctx context.Context, eventID string) ([]*repository.Attendance, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Attendance), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *repository.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, taskID string) (*repository.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByTeam(ctx context.Context, teamID string, filter repository.TaskFilter) ([]*repository.Task, error) {
	args := m.Called(ctx, teamID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) ListDueByTeam(ctx context.Context, teamID string) ([]*repository.Task, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) Patch(ctx context.Context, patch *repository.TaskPatch) (*repository.Task, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Task), args.Error(1)
}

type MockCarpoolRepository struct {
	mock.Mock
}

func (m *MockCarpoolRepository) Create(ctx context.Context, carpool *repository.Carpool) error {
	args := m.Called(ctx, carpool)
	return args.Error(0)
}

func (m *MockCarpoolRepository) Get(ctx context.Context, carpoolID string) (*repository.Carpool, error) {
	args := m.Called(ctx, carpoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Carpool), args.Error(1)
}

func (m *MockCarpoolRepository) GetForUpdate(ctx context.Context, carpoolID string) (*repository.Carpool, error) {
	args := m.Called(ctx, carpoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Carpool), args.Error(1)
}

func (m *MockCarpoolRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Carpool, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Carpool), args.Error(1)
}

func (m *MockCarpoolRepository) ListRiders(ctx context.Context, carpoolID string) ([]*repository.CarpoolRider, error) {
	args := m.Called(ctx, carpoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.CarpoolRider), args.Error(1)
}

func (m *MockCarpoolRepository) ListRidersByTeam(ctx context.Context, teamID string) ([]*repository.CarpoolRider, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.CarpoolRider), args.Error(1)
}

func (m *MockCarpoolRepository) AddRider(ctx context.Context, rider *repository.CarpoolRider) error {
	args := m.Called(ctx, rider)
	return args.Error(0)
}

func (m *MockCarpoolRepository) RemoveRider(ctx context.Context, carpoolID, riderID string) error {
	args := m.Called(ctx, carpoolID, riderID)
	return args.Error(0)
}

type MockFinanceRepository struct {
	mock.Mock
}

func (m *MockFinanceRepository) Create(ctx context.Context, record *repository.FinanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFinanceRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.FinanceRecord, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.FinanceRecord), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *repository.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Message, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Message), args.Error(1)
}

func (m *MockMessageRepository) SetPinned(ctx context.Context, teamID, messageID string, pinned bool) (*repository.Message, error) {
	args := m.Called(ctx, teamID, messageID, pinned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Message), args.Error(1)
}

type MockCompetitionSource struct {
	mock.Mock
}

func (m *MockCompetitionSource) SeasonEvents(ctx context.Context, season int) ([]model.CompetitionEvent, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CompetitionEvent), args.Error(1)
}
