package xp

import (
	"context"
	"sync"
	"time"
)

// Earner awards experience for chatting, at most once per cooldown per user.
type Earner struct {
	Store    Store
	Amount   int64
	Cooldown time.Duration

	// OnAward, if set, is called after every successful award.
	OnAward func(userID string, amount int64)

	now func() time.Time
	mu  sync.Mutex
}

// NewEarner returns an Earner awarding amount every cooldown.
func NewEarner(store Store, amount int64, cooldown time.Duration) *Earner {
	return &Earner{Store: store, Amount: amount, Cooldown: cooldown}
}

// Earn awards the user if their last award is older than the cooldown. It
// reports whether anything was awarded.
func (e *Earner) Earn(ctx context.Context, userID string) (bool, error) {
	if e.Amount <= 0 || userID == "" {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if e.now != nil {
		now = e.now()
	}
	rec, err := e.Store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !rec.EarnedAt.IsZero() && now.Sub(rec.EarnedAt) < e.Cooldown {
		return false, nil
	}
	if _, err := e.Store.Award(ctx, userID, e.Amount, now); err != nil {
		return false, err
	}
	if e.OnAward != nil {
		e.OnAward(userID, e.Amount)
	}
	return true, nil
}
