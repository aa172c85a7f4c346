package suscoin

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
)

func newTestLedger(t *testing.T, subscriptionType string) (*Service, *repository.Repositories, uint) {
	t.Helper()

	repos := repository.NewMemoryRepositories()
	user := &models.User{
		Email:            "ledger@example.com",
		SubscriptionType: subscriptionType,
	}
	require.NoError(t, repos.Users.Create(user))
	return NewService(repos), repos, user.ID
}

func TestCreditDebitScenario(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionFree)
	ctx := context.Background()

	balance, err := svc.Credit(ctx, userID, 10, "Initial grant")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	// An overdraft must fail without touching the balance or the journal.
	_, err = svc.Debit(ctx, userID, 15, "Too expensive")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	user, err := repos.Users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, user.Suscoins)

	balance, err = svc.Debit(ctx, userID, 10, "Spend everything")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	transactions, err := repos.Transactions.GetByUserID(userID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, models.TransactionSuscoinEarn, transactions[0].Type)
	assert.Equal(t, 10, transactions[0].SuscoinsChanged)
	assert.Equal(t, models.TransactionSuscoinSpend, transactions[1].Type)
	assert.Equal(t, -10, transactions[1].SuscoinsChanged)
}

func TestDebitRejectsNegativeAmount(t *testing.T) {
	svc, _, userID := newTestLedger(t, models.SubscriptionFree)

	_, err := svc.Debit(context.Background(), userID, -5, "Negative")
	assert.Error(t, err)
}

func TestCreditUnknownUser(t *testing.T) {
	svc, _, _ := newTestLedger(t, models.SubscriptionFree)

	_, err := svc.Credit(context.Background(), 999, 5, "Ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreatorSpendsForFree(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionCreator)
	ctx := context.Background()

	_, err := svc.Credit(ctx, userID, 5, "Starter")
	require.NoError(t, err)

	balance, err := svc.Debit(ctx, userID, 100, "Creator spend")
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	// Waived debits leave no journal entry.
	transactions, err := repos.Transactions.GetByUserID(userID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionSuscoinEarn, transactions[0].Type)
}

func TestCreditWithRecordsPurchaseShape(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionFree)

	balance, err := svc.CreditWith(context.Background(), userID, 10, "Purchase: Suscoin Top-Up", CreditOptions{
		TransactionType: models.TransactionPurchase,
		AmountCents:     100,
		PaymentRef:      "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	transactions, err := repos.Transactions.GetByUserID(userID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionPurchase, transactions[0].Type)
	assert.Equal(t, 100, transactions[0].Amount)
	assert.Equal(t, "pi_123", transactions[0].StripePaymentIntentID)
}

func TestGrantDailyBonusOncePerDay(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionMonthly)
	ctx := context.Background()

	require.NoError(t, repos.Memberships.Create(&models.Membership{
		UserID:  userID,
		Service: "monthly-card",
		Type:    models.MembershipTypeSubscription,
		Status:  models.MembershipStatusActive,
	}))

	granted, err := svc.GrantDailyBonus(ctx, userID)
	require.NoError(t, err)
	assert.True(t, granted)

	user, err := repos.Users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Suscoins)

	granted, err = svc.GrantDailyBonus(ctx, userID)
	require.NoError(t, err)
	assert.False(t, granted)

	user, err = repos.Users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Suscoins)
}

func TestGrantDailyBonusConcurrent(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionMonthly)

	require.NoError(t, repos.Memberships.Create(&models.Membership{
		UserID:  userID,
		Service: "monthly-card",
		Type:    models.MembershipTypeSubscription,
		Status:  models.MembershipStatusActive,
	}))

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	var grants int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			granted, err := svc.GrantDailyBonus(context.Background(), userID)
			assert.NoError(t, err)
			if granted {
				atomic.AddInt64(&grants, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&grants))

	user, err := repos.Users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Suscoins)

	transactions, err := repos.Transactions.GetByUserID(userID)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestConcurrentCreditsSumExactly(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionFree)

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Credit(context.Background(), userID, 1, "Concurrent grant")
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	user, err := repos.Users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, workers, user.Suscoins)

	transactions, err := repos.Transactions.GetByUserID(userID)
	require.NoError(t, err)
	assert.Len(t, transactions, workers)
}

func TestGrantDailyBonusRequiresActiveMembership(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionMonthly)
	ctx := context.Background()

	granted, err := svc.GrantDailyBonus(ctx, userID)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, repos.Memberships.Create(&models.Membership{
		UserID:  userID,
		Service: "monthly-card",
		Status:  models.MembershipStatusCancelled,
	}))

	granted, err = svc.GrantDailyBonus(ctx, userID)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestStatusAggregatesMemberships(t *testing.T) {
	svc, repos, userID := newTestLedger(t, models.SubscriptionMonthly)

	require.NoError(t, repos.Memberships.Create(&models.Membership{
		UserID:  userID,
		Service: "monthly-card",
		Type:    models.MembershipTypeSubscription,
		Status:  models.MembershipStatusActive,
	}))

	status, err := svc.Status(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, status.User)
	assert.Equal(t, models.SubscriptionMonthly, status.User.SubscriptionType)

	info, ok := status.Memberships["monthly-card"]
	require.True(t, ok)
	assert.Equal(t, models.MembershipStatusActive, info.Status)
	assert.Nil(t, info.Expires)
}
