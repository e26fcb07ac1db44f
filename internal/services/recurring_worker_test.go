package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/testutil"
)

// stubRecurring fails ProcessDueRules for the owners listed in failFor.
type stubRecurring struct {
	RecurringServicer
	failFor map[uint]bool

	mu   sync.Mutex
	seen []uint
}

func (s *stubRecurring) ProcessDueRules(_ context.Context, userID uint, _ time.Time) (*ProcessReport, error) {
	s.mu.Lock()
	s.seen = append(s.seen, userID)
	s.mu.Unlock()
	if s.failFor[userID] {
		return nil, apperrors.Wrap(apperrors.ErrStorage, errors.New("boom"))
	}
	return &ProcessReport{Created: 1, Failures: []RuleFailure{}}, nil
}

func TestProcessAllOwners(t *testing.T) {
	ctx := context.Background()
	today := testutil.Date(2024, time.September, 9)

	t.Run("generates_for_every_active_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		users := NewUserService(db)
		recurring := NewRecurringService(db, nil)

		var owners []*models.User
		for i := 0; i < 5; i++ {
			owner := testutil.CreateTestUser(t, db)
			testutil.CreateTestRecurringRule(t, db, owner.ID, 9, nil)
			owners = append(owners, owner)
		}
		inactive := testutil.CreateTestUser(t, db)
		testutil.CreateTestRecurringRule(t, db, inactive.ID, 9, nil)
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		reports, err := ProcessAllOwners(ctx, users, recurring, today, 3)
		require.NoError(t, err)
		require.Len(t, reports, len(owners))
		for _, r := range reports {
			require.NoError(t, r.Err)
			assert.Equal(t, 1, r.Report.Created)
		}
		for _, owner := range owners {
			assert.Equal(t, int64(1), testutil.CountTransactions(t, db, owner.ID))
		}
		assert.Zero(t, testutil.CountTransactions(t, db, inactive.ID))

		again, err := ProcessAllOwners(ctx, users, recurring, today, 3)
		require.NoError(t, err)
		for _, r := range again {
			assert.Zero(t, r.Report.Created)
			assert.Equal(t, 1, r.Report.SkippedExisting)
		}
	})

	t.Run("owner_failure_is_isolated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		users := NewUserService(db)

		a := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestUser(t, db)
		c := testutil.CreateTestUser(t, db)
		stub := &stubRecurring{failFor: map[uint]bool{b.ID: true}}

		reports, err := ProcessAllOwners(ctx, users, stub, today, 0)
		require.NoError(t, err)
		require.Len(t, reports, 3)

		sort.Slice(reports, func(i, j int) bool { return reports[i].UserID < reports[j].UserID })
		assert.NoError(t, reports[0].Err)
		testutil.AssertAppError(t, reports[1].Err, "STORAGE_ERROR")
		assert.Nil(t, reports[1].Report)
		assert.NoError(t, reports[2].Err)

		assert.ElementsMatch(t, []uint{a.ID, b.ID, c.ID}, stub.seen)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestUser(t, db)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := ProcessAllOwners(cancelled, NewUserService(db), &stubRecurring{}, today, 2)
		assert.Error(t, err)
	})
}
