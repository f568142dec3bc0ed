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

// uncategorized is the summary bucket for records without a category.
const uncategorized = "uncategorized"

type FinanceService struct {
	finances repository.FinanceRepository
}

func NewFinanceService() *FinanceService {
	return &FinanceService{}
}

func (s *FinanceService) CreateRecord(ctx context.Context, id auth.Identity, in *model.FinanceRecord) (*model.FinanceRecord, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "join a team to track finances")
	}

	record := &repository.FinanceRecord{
		ID:              uuid.NewString(),
		TeamID:          id.TeamID,
		Type:            in.Type,
		Amount:          in.Amount,
		Description:     in.Description,
		Category:        in.Category,
		ExpenseCategory: in.ExpenseCategory,
		IncomeSource:    in.IncomeSource,
		Date:            in.Date,
		CreatedBy:       id.UserID,
	}

	if err := s.finances.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "team not found")
		}
		l.Error("failed to create finance record", zap.String("team_id", id.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create finance record")
	}

	return toModelFinanceRecord(record), nil
}

func (s *FinanceService) ListRecords(ctx context.Context, id auth.Identity) ([]*model.FinanceRecord, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	repoRecords, err := s.finances.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list finance records")
	}

	records := make([]*model.FinanceRecord, 0, len(repoRecords))
	for _, r := range repoRecords {
		records = append(records, toModelFinanceRecord(r))
	}
	return records, nil
}

// Summary totals income and expense across all of the team's records.
// Balance is income minus expense; expenses group into ByCategory.
func (s *FinanceService) Summary(ctx context.Context, id auth.Identity) (*model.FinanceSummary, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	records, err := s.finances.ListByTeam(ctx, id.TeamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list finance records")
	}

	summary := &model.FinanceSummary{ByCategory: make(map[string]float64)}
	for _, r := range records {
		switch r.Type {
		case model.FinanceIncome:
			summary.TotalIncome += r.Amount
		case model.FinanceExpense:
			summary.TotalExpense += r.Amount
			summary.ByCategory[expenseBucket(r)] += r.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	return summary, nil
}

func expenseBucket(r *repository.FinanceRecord) string {
	if r.ExpenseCategory != nil && *r.ExpenseCategory != "" {
		return *r.ExpenseCategory
	}
	if r.Category != nil && *r.Category != "" {
		return *r.Category
	}
	return uncategorized
}

func (s *FinanceService) WithFinanceRepo(r repository.FinanceRepository) *FinanceService {
	s.finances = r
	return s
}

func toModelFinanceRecord(r *repository.FinanceRecord) *model.FinanceRecord {
	return &model.FinanceRecord{
		ID:              r.ID,
		TeamID:          r.TeamID,
		Type:            r.Type,
		Amount:          r.Amount,
		Description:     r.Description,
		Category:        r.Category,
		ExpenseCategory: r.ExpenseCategory,
		IncomeSource:    r.IncomeSource,
		Date:            r.Date,
		CreatedBy:       r.CreatedBy,
	}
}
