package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiralhq/spiral-platform/app/models"
)

func TestLookupPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "monthly card", id: PlanMonthlyCard},
		{name: "topup", id: PlanTopup1USD},
		{name: "creator mode", id: PlanCreatorMode},
		{name: "unknown id", id: "gold-plan", wantErr: true},
		{name: "empty id", id: "", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan, err := LookupPlan(tc.id)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, plan.ID)
		})
	}
}

func TestCatalogShape(t *testing.T) {
	t.Parallel()

	monthly, err := LookupPlan(PlanMonthlyCard)
	require.NoError(t, err)
	assert.Equal(t, 300, monthly.PriceCents)
	assert.True(t, monthly.IsRecurring())
	assert.Equal(t, 1, monthly.DailySuscoinGrant)
	assert.Equal(t, models.SubscriptionMonthly, monthly.SubscriptionType)

	topup, err := LookupPlan(PlanTopup1USD)
	require.NoError(t, err)
	assert.Equal(t, 100, topup.PriceCents)
	assert.False(t, topup.IsRecurring())
	assert.Equal(t, 10, topup.SuscoinGrant)

	creator, err := LookupPlan(PlanCreatorMode)
	require.NoError(t, err)
	assert.Equal(t, 6000, creator.PriceCents)
	assert.True(t, creator.IsRecurring())
	assert.True(t, creator.UnlimitedSpending)
	assert.Equal(t, models.SubscriptionCreator, creator.SubscriptionType)
}

func TestPlansSortedByID(t *testing.T) {
	t.Parallel()

	plans := Plans()
	require.Len(t, plans, 3)
	for i := 1; i < len(plans); i++ {
		assert.Less(t, plans[i-1].ID, plans[i].ID)
	}
}
