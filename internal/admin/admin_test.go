package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slimeyayush/altair-frontend/internal/api"
	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) AdminLogin(ctx context.Context, creds api.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) AdminOrders(ctx context.Context, token string) ([]domain.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockBackend) UpdateOrderStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) error {
	return m.Called(ctx, token, id, status).Error(0)
}

func (m *mockBackend) CancelOrder(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockBackend) MarkOrderPaid(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockBackend) Inventory(ctx context.Context, token string) ([]domain.Product, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockBackend) UpdateStock(ctx context.Context, token string, id int64, qty int) error {
	return m.Called(ctx, token, id, qty).Error(0)
}

func (m *mockBackend) ToggleVisibility(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockBackend) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, token, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, token, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) ListAdmins(ctx context.Context, token string) ([]domain.Admin, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Admin), args.Error(1)
}

func (m *mockBackend) RegisterAdmin(ctx context.Context, token string, creds api.Credentials) error {
	return m.Called(ctx, token, creds).Error(0)
}

func (m *mockBackend) DeleteAdmin(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret-test-secret"))
	require.NoError(t, err)
	return tok
}

func newTestService(b Backend) (*Service, storage.Store) {
	store := storage.NewMemory()
	s := New(b, store, logger.Discard())
	s.now = func() time.Time { return testNow }
	return s, store
}

func signIn(t *testing.T, store storage.Store, token string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), domain.AdminTokenKey, []byte(token)))
}

func TestLogin_StoresToken(t *testing.T) {
	b := new(mockBackend)
	tok := signedToken(t, testNow.Add(time.Hour))
	b.On("AdminLogin", mock.Anything, api.Credentials{Username: "admin", Password: "admin123"}).Return(tok, nil)
	s, store := newTestService(b)

	require.NoError(t, s.Login(context.Background(), " admin ", "admin123"))

	raw, err := store.Get(context.Background(), domain.AdminTokenKey)
	require.NoError(t, err)
	assert.Equal(t, tok, string(raw))
	assert.True(t, s.SignedIn(context.Background()))
}

func TestLogin_BadCredentials(t *testing.T) {
	b := new(mockBackend)
	b.On("AdminLogin", mock.Anything, mock.Anything).Return("", apperrors.Unauthorized("Bad credentials"))
	s, store := newTestService(b)

	err := s.Login(context.Background(), "admin", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Invalid username or password.", apperrors.UserMessage(err))
	_, err = store.Get(context.Background(), domain.AdminTokenKey)
	assert.True(t, storage.IsNotFound(err))
}

func TestLogin_Validation(t *testing.T) {
	b := new(mockBackend)
	s, _ := newTestService(b)

	err := s.Login(context.Background(), "  ", "")

	var ve *validator.ValidationError
	assert.ErrorAs(t, err, &ve)
	b.AssertNotCalled(t, "AdminLogin", mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	s, store := newTestService(new(mockBackend))
	signIn(t, store, "opaque")

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.SignedIn(context.Background()))
}

func TestCall_NotSignedIn(t *testing.T) {
	b := new(mockBackend)
	s, _ := newTestService(b)

	_, err := s.Orders(context.Background())

	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	b.AssertNotCalled(t, "AdminOrders", mock.Anything, mock.Anything)
}

func TestCall_ExpiredTokenSignsOut(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, signedToken(t, testNow.Add(-time.Minute)))

	_, err := s.Inventory(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	b.AssertNotCalled(t, "Inventory", mock.Anything, mock.Anything)
	_, err = store.Get(context.Background(), domain.AdminTokenKey)
	assert.True(t, storage.IsNotFound(err))
}

func TestCall_RejectedTokenSignsOut(t *testing.T) {
	for name, rejection := range map[string]error{
		"401": apperrors.Unauthorized("expired"),
		"403": apperrors.Forbidden("denied"),
	} {
		t.Run(name, func(t *testing.T) {
			b := new(mockBackend)
			s, store := newTestService(b)
			tok := signedToken(t, testNow.Add(time.Hour))
			signIn(t, store, tok)
			b.On("AdminOrders", mock.Anything, tok).Return(nil, rejection)

			_, err := s.Orders(context.Background())

			assert.ErrorIs(t, err, ErrSessionExpired)
			assert.False(t, s.SignedIn(context.Background()))
		})
	}
}

func TestCall_OtherErrorsKeepSession(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "opaque-token")
	boom := errors.New("boom")
	b.On("MarkOrderPaid", mock.Anything, "opaque-token", int64(4)).Return(boom)

	err := s.MarkPaid(context.Background(), 4)

	assert.ErrorIs(t, err, boom)
	assert.True(t, s.SignedIn(context.Background()))
}

func TestUpdateOrderStatus(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")
	b.On("UpdateOrderStatus", mock.Anything, "tok", int64(9), domain.OrderStatusShipped).Return(nil)

	require.NoError(t, s.UpdateOrderStatus(context.Background(), 9, " shipped "))
	b.AssertExpectations(t)
}

func TestUpdateOrderStatus_Unknown(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")

	err := s.UpdateOrderStatus(context.Background(), 9, "LOST")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	b.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStock_Negative(t *testing.T) {
	s, store := newTestService(new(mockBackend))
	signIn(t, store, "tok")

	assert.ErrorIs(t, s.UpdateStock(context.Background(), 1, -1), apperrors.ErrInvalidInput)
}

func TestCancelAndToggle(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")
	b.On("CancelOrder", mock.Anything, "tok", int64(2)).Return(nil)
	b.On("ToggleVisibility", mock.Anything, "tok", int64(3)).Return(nil)
	b.On("UpdateStock", mock.Anything, "tok", int64(3), 12).Return(nil)

	require.NoError(t, s.CancelOrder(context.Background(), 2))
	require.NoError(t, s.ToggleVisibility(context.Background(), 3))
	require.NoError(t, s.UpdateStock(context.Background(), 3, 12))
	b.AssertExpectations(t)
}

func validInput() domain.ProductInput {
	return domain.ProductInput{
		Name:          "Auto CPAP",
		Price:         42000,
		StockQuantity: 3,
		Category:      "Sleep Apnea",
	}
}

func TestAddProduct(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")
	in := validInput()
	b.On("CreateProduct", mock.Anything, "tok", in).Return(&domain.Product{ID: 7, Name: in.Name}, nil)

	p, err := s.AddProduct(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
}

func TestAddProduct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ProductInput)
	}{
		{"missing name", func(in *domain.ProductInput) { in.Name = "" }},
		{"zero price", func(in *domain.ProductInput) { in.Price = 0 }},
		{"negative stock", func(in *domain.ProductInput) { in.StockQuantity = -1 }},
		{"unknown category", func(in *domain.ProductInput) { in.Category = "Toys" }},
		{"bad image url", func(in *domain.ProductInput) { in.ImageURL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(mockBackend)
			s, store := newTestService(b)
			signIn(t, store, "tok")
			in := validInput()
			tt.mutate(&in)

			_, err := s.AddProduct(context.Background(), in)

			require.Error(t, err)
			b.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")
	in := validInput()
	b.On("UpdateProduct", mock.Anything, "tok", int64(5), in).Return(&domain.Product{ID: 5}, nil)

	p, err := s.UpdateProduct(context.Background(), 5, in)

	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
}

func TestAdmins(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")
	b.On("ListAdmins", mock.Anything, "tok").Return([]domain.Admin{{ID: 1, Username: "admin"}}, nil)
	b.On("RegisterAdmin", mock.Anything, "tok", api.Credentials{Username: "ops", Password: "secret1"}).Return(nil)
	b.On("DeleteAdmin", mock.Anything, "tok", int64(2)).Return(nil)

	admins, err := s.Admins(context.Background())
	require.NoError(t, err)
	assert.Len(t, admins, 1)
	require.NoError(t, s.RegisterAdmin(context.Background(), "ops", "secret1"))
	require.NoError(t, s.DeleteAdmin(context.Background(), 2))
	b.AssertExpectations(t)
}

func TestRegisterAdmin_ShortPassword(t *testing.T) {
	b := new(mockBackend)
	s, store := newTestService(b)
	signIn(t, store, "tok")

	err := s.RegisterAdmin(context.Background(), "ops", "123")

	var ve *validator.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTokenExpired(t *testing.T) {
	assert.False(t, tokenExpired("not-a-jwt", testNow))
	assert.False(t, tokenExpired(signedToken(t, testNow.Add(time.Second)), testNow))
	assert.True(t, tokenExpired(signedToken(t, testNow), testNow))
}
