package orders

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGet(t *testing.T) {
	fake := apitest.New(t)
	client, err := api.New(api.Config{BaseURL: fake.URL})
	require.NoError(t, err)
	ctx := context.Background()

	fake.AddVariant(1, "SKU-1", "Shoe", "12.50")
	fake.SeedCartItem(1, 2)
	res, err := client.FinalizeDraft(ctx, fake.SeedDraft("a@example.com"))
	require.NoError(t, err)

	svc := NewService(client)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.OrderNumber, list[0].OrderNumber)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, list[0].Status)

	order, err := svc.Get(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", order.ShippingAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	_, err = svc.Get(ctx, 999)
	assert.True(t, api.IsNotFound(err))
}
