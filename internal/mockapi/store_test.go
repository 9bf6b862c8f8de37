package mockapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

// Seeded product ids.
const (
	bpMonitorID  int64 = 1
	oximeterID   int64 = 2
	cpapID       int64 = 7
	cpapMaskID   int64 = 8
	hospitalBed  int64 = 10
	seededActive       = 9
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(bcrypt.MinCost)
	require.NoError(t, Seed(s, "admin", "admin123"))
	return s
}

func TestStore_CatalogHidesArchived(t *testing.T) {
	s := newSeededStore(t)

	assert.Len(t, s.Products(), seededActive)
	assert.Len(t, s.Inventory(), seededActive+1)

	_, err := s.Product(hospitalBed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.ToggleVisibility(hospitalBed))
	p, err := s.Product(hospitalBed)
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestStore_Search(t *testing.T) {
	s := newSeededStore(t)

	names := func(ps []domain.Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Auto CPAP Machine", "Full Face CPAP Mask", "Heated CPAP Tubing"}, names(s.Search("cpap")))
	assert.Equal(t, []string{"Digital Blood Pressure Monitor", "Auto CPAP Machine"}, names(s.Search("BESTSELLER")))
	assert.Empty(t, s.Search("   "))
	assert.Len(t, s.ByCategory("mobility aids"), 2)
	assert.Empty(t, s.ByCategory("Hospital Equip"))
}

func TestStore_AddToCartRespectsStock(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.AddToCart("u1", cpapID)
	require.NoError(t, err)
	cart, err := s.AddToCart("u1", cpapID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.QuantityOf(cpapID))
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Auto CPAP Machine", cart.Items[0].Product.Name)

	_, err = s.AddToCart("u1", cpapID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = s.AddToCart("u1", cpapMaskID)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "out of stock")

	_, err = s.AddToCart("u1", hospitalBed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "archived")

	assert.True(t, s.Cart("u2").IsEmpty(), "carts are per member")
}

func TestStore_UpdateCartItem(t *testing.T) {
	s := newSeededStore(t)
	_, err := s.AddToCart("u1", oximeterID)
	require.NoError(t, err)

	cart, err := s.UpdateCartItem("u1", oximeterID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.QuantityOf(oximeterID))

	_, err = s.UpdateCartItem("u1", oximeterID, 40)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	cart, err = s.UpdateCartItem("u1", oximeterID, -5)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	_, err = s.UpdateCartItem("u1", oximeterID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_CheckoutTotals(t *testing.T) {
	s := newSeededStore(t)

	order, err := s.Checkout("", domain.CheckoutRequest{
		CustomerEmail: "guest@example.com",
		Items:         []domain.CheckoutItem{{ProductID: oximeterID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.InDelta(t, 2*1199+domain.ShippingFee, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Fingertip Pulse Oximeter", order.Items[0].ProductName)

	p, err := s.Product(oximeterID)
	require.NoError(t, err)
	assert.Equal(t, 40, p.StockQuantity, "stock is only taken on payment")

	_, err = s.Checkout("", domain.CheckoutRequest{CustomerEmail: "a@b.co"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.Checkout("", domain.CheckoutRequest{
		CustomerEmail: "a@b.co",
		Items:         []domain.CheckoutItem{{ProductID: cpapID, Quantity: 3}},
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStore_OrderLifecycle(t *testing.T) {
	s := newSeededStore(t)
	order, err := s.Checkout("u1", domain.CheckoutRequest{
		CustomerEmail: "m@example.com",
		Items:         []domain.CheckoutItem{{ProductID: cpapID, Quantity: 2}},
	})
	require.NoError(t, err)

	stock := func() int {
		t.Helper()
		for _, p := range s.Inventory() {
			if p.ID == cpapID {
				return p.StockQuantity
			}
		}
		t.Fatal("product missing")
		return 0
	}

	require.NoError(t, s.MarkPaid(order.ID))
	assert.Equal(t, 0, stock())
	assert.ErrorIs(t, s.MarkPaid(order.ID), apperrors.ErrConflict)

	require.NoError(t, s.CancelOrder(order.ID))
	assert.Equal(t, 2, stock(), "cancelling a paid order returns its stock")
	assert.ErrorIs(t, s.CancelOrder(order.ID), apperrors.ErrConflict)
	assert.ErrorIs(t, s.SetOrderStatus(order.ID, domain.OrderStatusShipped), apperrors.ErrConflict)

	assert.ErrorIs(t, s.MarkPaid(999), apperrors.ErrNotFound)
}

func TestStore_SetOrderStatus(t *testing.T) {
	s := newSeededStore(t)
	order, err := s.Checkout("u1", domain.CheckoutRequest{
		CustomerEmail: "m@example.com",
		Items:         []domain.CheckoutItem{{ProductID: bpMonitorID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, s.SetOrderStatus(order.ID, domain.OrderStatusPaid))
	p, err := s.Product(bpMonitorID)
	require.NoError(t, err)
	assert.Equal(t, 24, p.StockQuantity, "paying through the status picker takes stock")

	require.NoError(t, s.SetOrderStatus(order.ID, domain.OrderStatusShipped))
	require.NoError(t, s.SetOrderStatus(order.ID, domain.OrderStatusDelivered))
	assert.ErrorIs(t, s.SetOrderStatus(order.ID, domain.OrderStatusPending), apperrors.ErrConflict)

	orders := s.MemberOrders("u1")
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusDelivered, orders[0].Status)
	assert.Empty(t, s.MemberOrders("u2"))
}

func TestStore_OrdersNewestFirst(t *testing.T) {
	s := newSeededStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Checkout("", domain.CheckoutRequest{
			CustomerEmail: "g@example.com",
			Items:         []domain.CheckoutItem{{ProductID: oximeterID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	orders := s.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestStore_Admins(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.VerifyAdmin("admin", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	a, err := s.VerifyAdmin("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	second, err := s.AddAdmin("ops", "secret1")
	require.NoError(t, err)
	_, err = s.AddAdmin("OPS", "secret2")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	assert.ErrorIs(t, s.DeleteAdmin(a.ID, "admin"), apperrors.ErrConflict, "no self delete")
	require.NoError(t, s.DeleteAdmin(second.ID, "admin"))
	assert.False(t, s.HasAdmin("ops"))
	assert.ErrorIs(t, s.DeleteAdmin(second.ID, "admin"), apperrors.ErrNotFound)
}

func TestStore_EmailMembers(t *testing.T) {
	s := newSeededStore(t)

	first, err := s.SignInEmail("Jane@Example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, s.IsMember(first.uid))
	assert.Equal(t, "jane@example.com", first.email)

	again, err := s.SignInEmail("jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, first.uid, again.uid)
	assert.NotEqual(t, first.refresh, again.refresh)

	_, err = s.SignInEmail("jane@example.com", "nope123")
	assert.Equal(t, errInvalidPassword, err)
}

func TestStore_PhoneAndRefresh(t *testing.T) {
	s := newSeededStore(t)

	info := s.StartPhone("+919812345678")
	_, err := s.VerifyPhone(info, "000000", "123456")
	assert.Equal(t, errInvalidCode, err)

	m, err := s.VerifyPhone(info, "123456", "123456")
	require.NoError(t, err)
	assert.Equal(t, "+919812345678", m.phone)

	_, err = s.VerifyPhone(info, "123456", "123456")
	assert.Equal(t, errSessionExpired, err, "session info is single use")

	rotated, err := s.Refresh(m.refresh)
	require.NoError(t, err)
	assert.Equal(t, m.uid, rotated.uid)
	_, err = s.Refresh(m.refresh)
	assert.Equal(t, errInvalidRefresh, err)
}
