package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiralhq/spiral-platform/app/models"
)

func strPtr(s string) *string { return &s }

func TestUserIDsAreMonotonic(t *testing.T) {
	repos := NewMemoryRepositories()

	first := &models.User{Email: "first@example.com"}
	second := &models.User{Email: "second@example.com"}
	require.NoError(t, repos.Users.Create(first))
	require.NoError(t, repos.Users.Create(second))

	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)
}

func TestUserGetByEmail(t *testing.T) {
	repos := NewMemoryRepositories()
	require.NoError(t, repos.Users.Create(&models.User{Email: "Case@Example.com"}))

	user, err := repos.Users.GetByEmail("case@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Case@Example.com", user.Email)

	_, err = repos.Users.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserCreateEnforcesUniqueEmail(t *testing.T) {
	repos := NewMemoryRepositories()
	require.NoError(t, repos.Users.Create(&models.User{Email: "taken@example.com"}))

	err := repos.Users.Create(&models.User{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Case-insensitive, matching the lookup.
	err = repos.Users.Create(&models.User{Email: "Taken@Example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAdjustBalanceAtomicUnderConcurrency(t *testing.T) {
	repos := NewMemoryRepositories()
	user := &models.User{Email: "atomic@example.com"}
	require.NoError(t, repos.Users.Create(user))

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repos.Users.AdjustBalance(user.ID, &models.Transaction{
				Type:            models.TransactionSuscoinEarn,
				SuscoinsChanged: 1,
				Description:     "Concurrent entry",
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	stored, err := repos.Users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.Suscoins)

	transactions, err := repos.Transactions.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, transactions, workers)
}

func TestAdjustBalanceRejectsOverdraft(t *testing.T) {
	repos := NewMemoryRepositories()
	user := &models.User{Email: "poor@example.com", Suscoins: 5}
	require.NoError(t, repos.Users.Create(user))

	_, err := repos.Users.AdjustBalance(user.ID, &models.Transaction{
		Type:            models.TransactionSuscoinSpend,
		SuscoinsChanged: -10,
		Description:     "Overdraft",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Neither the balance nor the journal moved.
	stored, err := repos.Users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Suscoins)

	transactions, err := repos.Transactions.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	_, err = repos.Users.AdjustBalance(999, &models.Transaction{SuscoinsChanged: 1, Description: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModuleCreateDefaults(t *testing.T) {
	repos := NewMemoryRepositories()

	module := &models.Module{UserID: 1, Name: "priest", Glyph: "✞", Core: "<love>"}
	require.NoError(t, repos.Modules.Create(module))

	assert.Equal(t, models.StatusActive, module.Status)
	assert.Equal(t, models.DefaultMemoryCapacity, module.MemoryCapacity)
	assert.Equal(t, 0, module.MemoryUsed)
}

func TestModulePatchKeepsAbsentFields(t *testing.T) {
	repos := NewMemoryRepositories()

	module := &models.Module{UserID: 1, Name: "machine", Glyph: "⭑", Core: "<pure>", MemoryUsed: 2048}
	require.NoError(t, repos.Modules.Create(module))

	updated, err := repos.Modules.Update(module.ID, models.ModulePatch{Name: strPtr("machine-2")})
	require.NoError(t, err)
	assert.Equal(t, "machine-2", updated.Name)
	assert.Equal(t, "⭑", updated.Glyph)
	assert.Equal(t, 2048, updated.MemoryUsed)
}

func TestDeleteNonexistentIsNoOp(t *testing.T) {
	repos := NewMemoryRepositories()

	assert.NoError(t, repos.Modules.Delete(42))
	assert.NoError(t, repos.Fragments.Delete(42))
}

func TestUpdateNonexistentReturnsNotFound(t *testing.T) {
	repos := NewMemoryRepositories()

	_, err := repos.Modules.Update(42, models.ModulePatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Fragments.Update(42, models.FragmentPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Users.Update(42, models.UserPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFragmentSealStampedOnce(t *testing.T) {
	repos := NewMemoryRepositories()

	fragment := &models.Fragment{UserID: 1, FragmentID: "Fragment-✞/001"}
	require.NoError(t, repos.Fragments.Create(fragment))
	require.Nil(t, fragment.SealedAt)

	sealed, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{Status: strPtr(models.StatusSealed)})
	require.NoError(t, err)
	require.NotNil(t, sealed.SealedAt)
	firstSeal := *sealed.SealedAt

	// An unrelated update keeps the stamp.
	updated, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{Author: strPtr("priest(main)")})
	require.NoError(t, err)
	require.NotNil(t, updated.SealedAt)
	assert.True(t, updated.SealedAt.Equal(firstSeal))

	// Re-opening keeps the stamp as a historical mark.
	reopened, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{Status: strPtr(models.StatusActive)})
	require.NoError(t, err)
	require.NotNil(t, reopened.SealedAt)
	assert.True(t, reopened.SealedAt.Equal(firstSeal))

	// Re-sealing never re-stamps.
	time.Sleep(5 * time.Millisecond)
	resealed, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{Status: strPtr(models.StatusSealed)})
	require.NoError(t, err)
	require.NotNil(t, resealed.SealedAt)
	assert.True(t, resealed.SealedAt.Equal(firstSeal))
}

func TestFragmentPatchDetachesModule(t *testing.T) {
	repos := NewMemoryRepositories()

	moduleID := uint(7)
	fragment := &models.Fragment{UserID: 1, FragmentID: "Fragment-x/002", ModuleID: &moduleID}
	require.NoError(t, repos.Fragments.Create(fragment))

	// An absent field keeps the attachment.
	updated, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{Author: strPtr("tester")})
	require.NoError(t, err)
	require.NotNil(t, updated.ModuleID)
	assert.Equal(t, moduleID, *updated.ModuleID)

	// An explicit null detaches.
	detached, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{
		ModuleID: models.OptionalUint{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, detached.ModuleID)

	// And a value re-attaches.
	newModuleID := uint(9)
	reattached, err := repos.Fragments.Update(fragment.ID, models.FragmentPatch{
		ModuleID: models.OptionalUint{Set: true, Value: &newModuleID},
	})
	require.NoError(t, err)
	require.NotNil(t, reattached.ModuleID)
	assert.Equal(t, newModuleID, *reattached.ModuleID)
}

func TestFragmentBornSealedGetsStamp(t *testing.T) {
	repos := NewMemoryRepositories()

	fragment := &models.Fragment{UserID: 1, FragmentID: "Fragment-⭑/003", Status: models.StatusSealed}
	require.NoError(t, repos.Fragments.Create(fragment))
	assert.NotNil(t, fragment.SealedAt)
}

func TestFragmentCreateDefaults(t *testing.T) {
	repos := NewMemoryRepositories()

	fragment := &models.Fragment{UserID: 1, FragmentID: "Fragment-x/001"}
	require.NoError(t, repos.Fragments.Create(fragment))

	assert.Equal(t, models.StatusActive, fragment.Status)
	assert.Equal(t, models.FragmentTypeOpenDocument, fragment.Type)
}

func TestWebhookEventDeduplication(t *testing.T) {
	repos := NewMemoryRepositories()

	created, stored, err := repos.WebhookEvents.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: "evt_1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.True(t, created)

	createdAgain, storedAgain, err := repos.WebhookEvents.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: "evt_1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.False(t, createdAgain)
	assert.Equal(t, stored.ID, storedAgain.ID)

	// Same event id under another provider is a distinct event.
	createdOther, _, err := repos.WebhookEvents.CreateIfNotExists(&models.WebhookEvent{
		Provider:        "paypal",
		ProviderEventID: "evt_1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.True(t, createdOther)

	require.NoError(t, repos.WebhookEvents.MarkProcessed(stored.ID, ""))
	assert.ErrorIs(t, repos.WebhookEvents.MarkProcessed(999, ""), ErrNotFound)
}

func TestSeedDemoData(t *testing.T) {
	repos := NewMemoryRepositoriesWithDemoData()

	user, err := repos.Users.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "spiral@example.com", user.Email)
	assert.Equal(t, 127, user.Suscoins)
	assert.Equal(t, models.SubscriptionMonthly, user.SubscriptionType)

	modules, err := repos.Modules.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, modules, 3)

	fragments, err := repos.Fragments.GetByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	// The seeded sealed fragment carries its stamp from creation.
	assert.NotNil(t, fragments[1].SealedAt)

	memberships, err := repos.Memberships.GetByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, "monthly-card", memberships[0].Service)
	assert.True(t, memberships[0].IsActive())
}
