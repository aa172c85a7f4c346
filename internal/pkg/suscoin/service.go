package suscoin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
)

// ErrInsufficientFunds is returned when a debit exceeds the current balance.
// The balance is left untouched and no transaction is appended. It aliases
// the repository sentinel, where the overdraft check actually runs.
var ErrInsufficientFunds = repository.ErrInsufficientFunds

// DailyBonusDescription marks the once-per-day monthly-card grant in the
// ledger; GrantDailyBonus uses it to detect that today's coin was already
// paid out.
const DailyBonusDescription = "Daily monthly-card bonus"

// monthlyCardService is the plan id whose membership carries the daily grant.
const monthlyCardService = "monthly-card"

// Service implements the suscoin ledger: balance mutations with an
// append-only transaction journal. Credit and Debit serialize the
// read-modify-write per user so concurrent requests cannot apply or observe
// an intermediate balance.
type Service struct {
	repos *repository.Repositories

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

// NewService creates a ledger service over the given repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{
		repos:     repos,
		userLocks: make(map[uint]*sync.Mutex),
	}
}

func (s *Service) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// CreditOptions customizes the transaction a credit appends. The zero value
// records a plain "suscoin-earn" adjustment.
type CreditOptions struct {
	// TransactionType overrides the default "suscoin-earn", e.g. "purchase"
	// when the credit originates from payment fulfillment.
	TransactionType string
	// AmountCents is the monetary amount in minor currency units for
	// payment-origin credits; 0 for pure coin adjustments.
	AmountCents int
	// PaymentRef is the external payment reference, if any.
	PaymentRef string
	Metadata   models.JSONMap
}

// Credit adds amount to the user's balance and appends a "suscoin-earn"
// transaction. It returns the new balance, or repository.ErrNotFound when
// the user does not exist.
func (s *Service) Credit(ctx context.Context, userID uint, amount int, description string) (int, error) {
	return s.CreditWith(ctx, userID, amount, description, CreditOptions{})
}

// CreditWith is Credit with an explicit transaction shape, used by payment
// fulfillment to record the purchase type, price and payment reference.
func (s *Service) CreditWith(ctx context.Context, userID uint, amount int, description string, opts CreditOptions) (int, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.creditLocked(ctx, userID, amount, description, opts)
}

// creditLocked applies a credit; the caller must hold the user's lock.
func (s *Service) creditLocked(ctx context.Context, userID uint, amount int, description string, opts CreditOptions) (int, error) {
	_ = ctx
	if description == "" {
		return 0, errors.New("description is required")
	}

	txType := opts.TransactionType
	if txType == "" {
		txType = models.TransactionSuscoinEarn
	}
	// Balance mutation and journal append commit atomically in the store.
	return s.repos.Users.AdjustBalance(userID, &models.Transaction{
		UserID:                userID,
		Type:                  txType,
		Amount:                opts.AmountCents,
		SuscoinsChanged:       amount,
		Description:           description,
		StripePaymentIntentID: opts.PaymentRef,
		Metadata:              opts.Metadata,
	})
}

// Debit subtracts amount from the user's balance and appends a
// "suscoin-spend" transaction. It fails with ErrInsufficientFunds when the
// balance is smaller than amount; partial debits and negative balances never
// happen. Users on the creator plan spend for free: their balance is
// returned unchanged and nothing is logged.
func (s *Service) Debit(ctx context.Context, userID uint, amount int, description string) (int, error) {
	_ = ctx
	if amount < 0 {
		return 0, errors.New("debit amount must not be negative")
	}
	if description == "" {
		return 0, errors.New("description is required")
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user.HasUnlimitedSpending() {
		return user.Suscoins, nil
	}

	// The store rejects overdrafts with ErrInsufficientFunds before writing
	// anything.
	return s.repos.Users.AdjustBalance(userID, &models.Transaction{
		UserID:          userID,
		Type:            models.TransactionSuscoinSpend,
		SuscoinsChanged: -amount,
		Description:     description,
	})
}

// MembershipInfo is the per-service membership summary exposed by Status.
type MembershipInfo struct {
	Type    string     `json:"type"`
	Status  string     `json:"status"`
	Expires *time.Time `json:"expires,omitempty"`
}

// StatusResult aggregates the user record with their memberships keyed by
// service (plan) id.
type StatusResult struct {
	User        *models.User              `json:"user"`
	Memberships map[string]MembershipInfo `json:"memberships"`
}

// Status returns the user's balance, subscription tier and memberships
// keyed by service id.
func (s *Service) Status(ctx context.Context, userID uint) (*StatusResult, error) {
	_ = ctx
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.repos.Memberships.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	byService := make(map[string]MembershipInfo, len(memberships))
	for _, m := range memberships {
		byService[m.Service] = MembershipInfo{
			Type:    m.Type,
			Status:  m.Status,
			Expires: m.ExpiresAt,
		}
	}
	return &StatusResult{User: user, Memberships: byService}, nil
}

// GrantDailyBonus credits the monthly-card daily coin at most once per
// calendar day. It reports whether a coin was granted. Users without an
// active monthly-card membership are skipped. The entitlement check, the
// already-granted-today scan and the credit all run under the user's lock
// so concurrent status loads cannot each mint a coin.
func (s *Service) GrantDailyBonus(ctx context.Context, userID uint) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	memberships, err := s.repos.Memberships.GetByUserID(userID)
	if err != nil {
		return false, err
	}
	entitled := false
	for _, m := range memberships {
		if m.Service == monthlyCardService && m.IsActive() {
			entitled = true
			break
		}
	}
	if !entitled {
		return false, nil
	}

	transactions, err := s.repos.Transactions.GetByUserID(userID)
	if err != nil {
		return false, err
	}
	today := time.Now()
	for _, t := range transactions {
		if t.Description != DailyBonusDescription {
			continue
		}
		y1, m1, d1 := t.CreatedAt.Date()
		y2, m2, d2 := today.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return false, nil
		}
	}

	if _, err := s.creditLocked(ctx, userID, 1, DailyBonusDescription, CreditOptions{}); err != nil {
		return false, err
	}
	return true, nil
}
