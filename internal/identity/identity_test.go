package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/httpclient"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

type fakeProvider struct {
	mu        sync.Mutex
	calls     atomic.Int32
	lastBody  map[string]any
	lastPath  string
	lastKey   string
	status    int
	errorBody string
}

func (f *fakeProvider) fail(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.errorBody = status, body
}

func (f *fakeProvider) last() (path, key string, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastKey, f.lastBody
}

func (f *fakeProvider) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.lastPath = r.URL.Path
		f.lastKey = r.URL.Query().Get("key")
		f.lastBody = body
		status, errBody := f.status, f.errorBody
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, errBody)
			return
		}

		switch r.URL.Path {
		case "/v1/accounts:signInWithPassword":
			_, _ = io.WriteString(w, `{"localId":"uid-1","email":"a@b.co","idToken":"id-1","refreshToken":"rt-1","expiresIn":"3600"}`)
		case "/v1/accounts:sendVerificationCode":
			_, _ = io.WriteString(w, `{"sessionInfo":"sess-xyz"}`)
		case "/v1/accounts:signInWithPhoneNumber":
			_, _ = io.WriteString(w, `{"localId":"uid-2","phoneNumber":"+919876543210","idToken":"id-2","refreshToken":"rt-2","expiresIn":"3600"}`)
		case "/v1/token":
			_, _ = io.WriteString(w, `{"id_token":"id-refreshed","refresh_token":"rt-new","expires_in":"3600","user_id":"uid-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T) (*Client, *fakeProvider, storage.Store) {
	t.Helper()
	fp := &fakeProvider{}
	srv := httptest.NewServer(fp.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := httpclient.NewBreaker(httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("identity-test"), logger)
	store := storage.NewMemory()
	c := New(cb, Config{APIKey: "k123", IdentityBaseURL: srv.URL + "/", SecureTokenBaseURL: srv.URL}, store, logger)
	return c, fp, store
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone("9876543210"))
	assert.Equal(t, "+919876543210", NormalizePhone(" 98765 43210 "))
	assert.Equal(t, "+14155550100", NormalizePhone("+14155550100"))
	assert.Equal(t, "", NormalizePhone("  "))
}

func TestSignInWithEmail_PersistsSession(t *testing.T) {
	c, fp, store := newTestClient(t)
	ctx := context.Background()

	id, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	path, key, body := fp.last()
	assert.Equal(t, "/v1/accounts:signInWithPassword", path)
	assert.Equal(t, "k123", key)
	assert.Equal(t, true, body["returnSecureToken"])

	var saved domain.Identity
	require.NoError(t, storage.GetJSON(ctx, store, domain.SessionKey, &saved))
	assert.Equal(t, "id-1", saved.IDToken)
	assert.Equal(t, "rt-1", saved.RefreshToken)
}

func TestSignInWithEmail_ValidatesBeforeCalling(t *testing.T) {
	c, fp, _ := newTestClient(t)

	_, err := c.SignInWithEmail(context.Background(), "not-an-email", "secret1")

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "email")
	assert.Equal(t, int32(0), fp.calls.Load())
}

func TestSignInWithEmail_InvalidPassword(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.fail(http.StatusBadRequest, `{"error":{"code":400,"message":"INVALID_PASSWORD","errors":[]}}`)

	_, err := c.SignInWithEmail(context.Background(), "a@b.co", "wrongpw")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "invalid email or password", apperrors.UserMessage(err))
}

func TestProviderError_TooManyAttempts(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.fail(http.StatusBadRequest, `{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled"}}`)

	_, err := c.SignInWithEmail(context.Background(), "a@b.co", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestProviderError_UnknownShape(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.fail(http.StatusBadRequest, `quota`)

	_, err := c.SignInWithEmail(context.Background(), "a@b.co", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "identity: quota", apperrors.UserMessage(err))
}

func TestPhoneSignIn_StartAndVerify(t *testing.T) {
	c, fp, store := newTestClient(t)
	ctx := context.Background()

	info, err := c.StartPhoneSignIn(ctx, "9876543210", "")
	require.NoError(t, err)
	assert.Equal(t, "sess-xyz", info)
	_, _, body := fp.last()
	assert.Equal(t, "+919876543210", body["phoneNumber"])

	id, err := c.VerifyPhoneCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", id.UID)
	_, _, body = fp.last()
	assert.Equal(t, "sess-xyz", body["sessionInfo"])

	_, err = store.Get(ctx, phoneVerificationKey)
	assert.True(t, storage.IsNotFound(err), "verification state is dropped after success")
}

func TestVerifyPhoneCode_WithoutStart(t *testing.T) {
	c, fp, _ := newTestClient(t)

	_, err := c.VerifyPhoneCode(context.Background(), "123456")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, int32(0), fp.calls.Load())
}

func TestVerifyPhoneCode_BadCodeFormat(t *testing.T) {
	c, fp, store := newTestClient(t)
	require.NoError(t, store.Set(context.Background(), phoneVerificationKey, []byte("sess")))

	_, err := c.VerifyPhoneCode(context.Background(), "12ab")

	var ve *validator.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, int32(0), fp.calls.Load())
}

func TestCurrentUser_NoSession(t *testing.T) {
	c, _, _ := newTestClient(t)

	id, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestCurrentUser_FreshTokenNotRefreshed(t *testing.T) {
	c, fp, _ := newTestClient(t)
	ctx := context.Background()
	_, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	before := fp.calls.Load()

	id, err := c.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Equal(t, "id-1", id.IDToken)
	assert.Equal(t, before, fp.calls.Load())
}

func TestCurrentUser_RefreshesExpiredToken(t *testing.T) {
	c, fp, store := newTestClient(t)
	ctx := context.Background()
	_, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	id, err := c.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Equal(t, "id-refreshed", id.IDToken)
	path, _, body := fp.last()
	assert.Equal(t, "/v1/token", path)
	assert.Equal(t, "refresh_token", body["grant_type"])
	assert.Equal(t, "rt-1", body["refresh_token"])

	var saved domain.Identity
	require.NoError(t, storage.GetJSON(ctx, store, domain.SessionKey, &saved))
	assert.Equal(t, "rt-new", saved.RefreshToken)
}

func TestCurrentUser_RevokedRefreshSignsOut(t *testing.T) {
	c, fp, store := newTestClient(t)
	ctx := context.Background()
	_, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	fp.fail(http.StatusBadRequest, `{"error":{"code":400,"message":"TOKEN_EXPIRED"}}`)
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	id, err := c.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Nil(t, id)
	_, err = store.Get(ctx, domain.SessionKey)
	assert.True(t, storage.IsNotFound(err))
}

func TestCurrentUser_RefreshNetworkErrorIsReturned(t *testing.T) {
	c, fp, _ := newTestClient(t)
	ctx := context.Background()
	_, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	fp.fail(http.StatusServiceUnavailable, `down`)
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = c.CurrentUser(ctx)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestSignOut(t *testing.T) {
	c, _, store := newTestClient(t)
	ctx := context.Background()
	_, err := c.SignInWithEmail(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	require.NoError(t, c.SignOut(ctx))

	_, err = store.Get(ctx, domain.SessionKey)
	assert.True(t, storage.IsNotFound(err))
}
