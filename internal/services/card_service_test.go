package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/testutil"
)

func TestNameMatchResolver(t *testing.T) {
	resolver := NewNameMatchResolver("")

	t.Run("no_card_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		id, err := resolver.Resolve(db, user.ID)
		require.NoError(t, err)
		assert.Nil(t, id)
	})

	t.Run("owner_beats_global", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestNamedCategory(t, db, nil, "Cartão", models.CategoryTypeExpense)
		own := testutil.CreateTestNamedCategory(t, db, &user.ID, "Meu cartão Nubank", models.CategoryTypeExpense)

		id, err := resolver.Resolve(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, own.ID, *id)
	})

	t.Run("global_fallback", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestCardCategory(t, db, other.ID)
		global := testutil.CreateTestNamedCategory(t, db, nil, "Cartão", models.CategoryTypeExpense)

		id, err := resolver.Resolve(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, global.ID, *id)
	})

	t.Run("lowest_id_breaks_ties", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestNamedCategory(t, db, &user.ID, "Cartão Visa", models.CategoryTypeExpense)
		testutil.CreateTestNamedCategory(t, db, &user.ID, "Cartão Master", models.CategoryTypeExpense)

		id, err := resolver.Resolve(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, first.ID, *id)
	})

	t.Run("folds_non_ascii_case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		upper := testutil.CreateTestNamedCategory(t, db, &user.ID, "CARTÃO NUBANK", models.CategoryTypeExpense)

		id, err := resolver.Resolve(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, upper.ID, *id)
	})

	t.Run("custom_marker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		credit := testutil.CreateTestNamedCategory(t, db, &user.ID, "Credit Card", models.CategoryTypeExpense)

		id, err := NewNameMatchResolver("credit").Resolve(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, credit.ID, *id)
	})
}

func TestGetOpenBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_without_card_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewNameMatchResolver(""), nil)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "10", testutil.TxOpts{Status: models.TransactionStatusPending})

		bucket, err := svc.GetOpenBucket(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, bucket.CategoryID)
		assert.Empty(t, bucket.Items)
		testutil.AssertDecimal(t, "total", bucket.Total, "0")
	})

	t.Run("pending_items_oldest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewNameMatchResolver(""), nil)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCardCategory(t, db, user.ID)

		late := testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "20", testutil.TxOpts{
			Date: testutil.Date(2024, time.May, 9), Status: models.TransactionStatusPending, CategoryID: &card.ID,
		})
		early := testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "5.25", testutil.TxOpts{
			Date: testutil.Date(2023, time.December, 1), Status: models.TransactionStatusPending, CategoryID: &card.ID,
		})
		testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "100", testutil.TxOpts{CategoryID: &card.ID})

		bucket, err := svc.GetOpenBucket(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, bucket.Items, 2)
		assert.Equal(t, early.ID, bucket.Items[0].ID)
		assert.Equal(t, late.ID, bucket.Items[1].ID)
		testutil.AssertDecimal(t, "total", bucket.Total, "25.25")
	})
}

func TestSettleBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("settles_only_card_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		recorder := &testutil.EventRecorder{}
		svc := NewCardService(db, NewNameMatchResolver(""), recorder)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCardCategory(t, db, user.ID)
		lookalike := testutil.CreateTestNamedCategory(t, db, &user.ID, "Cartão antigo", models.CategoryTypeExpense)
		plain := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		otherCard := testutil.CreateTestCardCategory(t, db, other.ID)

		pending := testutil.TxOpts{Status: models.TransactionStatusPending}
		for i := 0; i < 3; i++ {
			opts := pending
			opts.CategoryID = &card.ID
			testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "10", opts)
		}
		untouched := []*models.Transaction{
			testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "1", testutil.TxOpts{Status: models.TransactionStatusPending, CategoryID: &lookalike.ID}),
			testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "1", testutil.TxOpts{Status: models.TransactionStatusPending, CategoryID: &plain.ID}),
			testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "1", testutil.TxOpts{Status: models.TransactionStatusPending}),
			testutil.CreateTestTransactionWith(t, db, other.ID, models.TransactionTypeExpense, "1", testutil.TxOpts{Status: models.TransactionStatusPending, CategoryID: &otherCard.ID}),
		}

		settled, err := svc.SettleBucket(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), settled)

		var stillPending int64
		db.Model(&models.Transaction{}).Where("category_id = ? AND status = ?", card.ID, models.TransactionStatusPending).Count(&stillPending)
		assert.Zero(t, stillPending)

		for _, tx := range untouched {
			var reloaded models.Transaction
			require.NoError(t, db.First(&reloaded, tx.ID).Error)
			assert.Equal(t, models.TransactionStatusPending, reloaded.Status, "transaction %d must stay pending", tx.ID)
		}

		require.Len(t, recorder.OfType(events.CardSettled), 1)

		again, err := svc.SettleBucket(ctx, user.ID)
		require.NoError(t, err)
		assert.Zero(t, again)
		assert.Len(t, recorder.OfType(events.CardSettled), 1)
	})

	t.Run("no_card_category_settles_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewNameMatchResolver(""), nil)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "10", testutil.TxOpts{Status: models.TransactionStatusPending})

		settled, err := svc.SettleBucket(ctx, user.ID)
		require.NoError(t, err)
		assert.Zero(t, settled)
	})
}
