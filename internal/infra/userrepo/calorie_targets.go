package userrepo

import (
	"context"

	"github.com/lunarfit/coach-api/internal/domain/auth"
	"github.com/lunarfit/coach-api/internal/domain/traininglog"
)

// CalorieTargetAdapter exposes a user's calorie target to the training
// log without leaking the rest of the account.
type CalorieTargetAdapter struct {
	repo auth.Repository
}

// NewCalorieTargetAdapter wraps a user repository.
func NewCalorieTargetAdapter(repo auth.Repository) *CalorieTargetAdapter {
	return &CalorieTargetAdapter{repo: repo}
}

// TargetFor returns the user's configured calorie target, if any.
func (a *CalorieTargetAdapter) TargetFor(ctx context.Context, userID int64) (int, bool, error) {
	user, found, err := a.repo.GetByID(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if !found || user.CalorieTarget == nil {
		return 0, false, nil
	}
	return *user.CalorieTarget, true, nil
}

var _ traininglog.CalorieTargets = (*CalorieTargetAdapter)(nil)
