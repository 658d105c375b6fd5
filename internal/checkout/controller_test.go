package checkout

import (
	"testing"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartsAtBilling(t *testing.T) {
	assert.Equal(t, domain.StepBilling, NewController().Step())
}

func TestController_AdvanceOnlyFromCurrent(t *testing.T) {
	c := NewController()

	assert.ErrorIs(t, c.Advance(domain.StepShipping), ErrWrongStep)
	assert.Equal(t, domain.StepBilling, c.Step())

	require.NoError(t, c.Advance(domain.StepBilling))
	assert.Equal(t, domain.StepShipping, c.Step())

	// a repeated billing success does not skip ahead
	assert.ErrorIs(t, c.Advance(domain.StepBilling), ErrWrongStep)
	assert.Equal(t, domain.StepShipping, c.Step())

	require.NoError(t, c.Advance(domain.StepShipping))
	require.NoError(t, c.Advance(domain.StepReview))
	assert.Equal(t, domain.StepPayment, c.Step())
	assert.ErrorIs(t, c.Advance(domain.StepPayment), ErrWrongStep)
}

func TestController_ObserversSeeTransitions(t *testing.T) {
	c := NewController()
	var got [][2]domain.CheckoutStep
	c.OnStepChange(func(from, to domain.CheckoutStep) {
		got = append(got, [2]domain.CheckoutStep{from, to})
	})

	require.NoError(t, c.Advance(domain.StepBilling))
	c.Back()
	c.Back()
	c.Reset()

	assert.Equal(t, [][2]domain.CheckoutStep{
		{domain.StepBilling, domain.StepShipping},
		{domain.StepShipping, domain.StepBilling},
	}, got)
}

func TestController_ObserverMayReadStep(t *testing.T) {
	c := NewController()
	var seen domain.CheckoutStep
	c.OnStepChange(func(_, _ domain.CheckoutStep) { seen = c.Step() })

	require.NoError(t, c.Advance(domain.StepBilling))
	assert.Equal(t, domain.StepShipping, seen)
}
