// Package identity signs members in against the Identity Toolkit REST API
// and keeps their credentials in client-local storage.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/httpclient"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// DefaultCountryCode is prefixed to phone numbers given without one.
const DefaultCountryCode = "+91"

// phoneVerificationKey holds the sessionInfo between sending and verifying an OTP.
const phoneVerificationKey = "phoneVerification"


// Sender executes a JSON request. httpclient.Breaker satisfies it.
type Sender interface {
	Send(ctx context.Context, method, url, bearer string, body []byte) (*http.Response, error)
}

// Config locates the identity provider.
type Config struct {
	APIKey             string
	IdentityBaseURL    string
	SecureTokenBaseURL string
}

// Client talks to the identity provider.
type Client struct {
	sender Sender
	cfg    Config
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates an identity client.
func New(sender Sender, cfg Config, store storage.Store, logger *slog.Logger) *Client {
	cfg.IdentityBaseURL = strings.TrimRight(cfg.IdentityBaseURL, "/")
	cfg.SecureTokenBaseURL = strings.TrimRight(cfg.SecureTokenBaseURL, "/")
	return &Client{
		sender: sender,
		cfg:    cfg,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

type emailSignIn struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type phoneStart struct {
	PhoneNumber    string `json:"phoneNumber" validate:"required,e164"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

type phoneVerify struct {
	SessionInfo string `json:"sessionInfo"`
	Code        string `json:"code" validate:"required,numeric,len=6"`
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type sessionInfoResponse struct {
	SessionInfo string `json:"sessionInfo"`
}

// NormalizePhone trims the number and adds the default country code when
// none is given.
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return DefaultCountryCode + phone
}

// SignInWithEmail signs a member in with email and password.
func (c *Client) SignInWithEmail(ctx context.Context, email, password string) (*domain.Identity, error) {
	req := emailSignIn{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var resp signInResponse
	if err := c.post(ctx, c.identityURL("accounts:signInWithPassword"), req, &resp); err != nil {
		return nil, err
	}
	return c.persist(ctx, resp)
}

// StartPhoneSignIn sends a one-time code to phone. The returned session info
// is also kept in storage so VerifyPhoneCode can run in a later process.
func (c *Client) StartPhoneSignIn(ctx context.Context, phone, recaptchaToken string) (string, error) {
	req := phoneStart{PhoneNumber: NormalizePhone(phone), RecaptchaToken: recaptchaToken}
	if err := validator.Validate(req); err != nil {
		return "", err
	}

	var resp sessionInfoResponse
	if err := c.post(ctx, c.identityURL("accounts:sendVerificationCode"), req, &resp); err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, phoneVerificationKey, []byte(resp.SessionInfo)); err != nil {
		return "", fmt.Errorf("save phone verification: %w", err)
	}

	c.logger.InfoContext(ctx, "verification code sent", slog.String("phone", req.PhoneNumber))
	return resp.SessionInfo, nil
}

// VerifyPhoneCode completes a phone sign-in started by StartPhoneSignIn.
func (c *Client) VerifyPhoneCode(ctx context.Context, code string) (*domain.Identity, error) {
	info, err := c.store.Get(ctx, phoneVerificationKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.InvalidInput("no verification in progress, request a code first")
		}
		return nil, fmt.Errorf("load phone verification: %w", err)
	}

	req := phoneVerify{SessionInfo: string(info), Code: strings.TrimSpace(code)}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var resp signInResponse
	if err := c.post(ctx, c.identityURL("accounts:signInWithPhoneNumber"), req, &resp); err != nil {
		return nil, err
	}
	if err := c.store.Delete(ctx, phoneVerificationKey); err != nil {
		c.logger.WarnContext(ctx, "failed to drop phone verification", slog.String("error", err.Error()))
	}
	return c.persist(ctx, resp)
}

// CurrentUser returns the stored member, refreshing an expired ID token.
// It returns nil without error when nobody is signed in or the refresh token
// has been revoked.
func (c *Client) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	var id domain.Identity
	if err := storage.GetJSON(ctx, c.store, domain.SessionKey, &id); err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if id.UID == "" || id.IDToken == "" {
		return nil, nil
	}
	if !id.NeedsRefresh(c.now()) {
		return &id, nil
	}

	refreshed, err := c.refresh(ctx, &id)
	if err != nil {
		if apperrors.IsAuthFailure(err) {
			c.logger.InfoContext(ctx, "stored session revoked, signing out", slog.String("uid", id.UID))
			return nil, c.SignOut(ctx)
		}
		return nil, err
	}
	return refreshed, nil
}

// SignOut forgets the stored credentials.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.store.Delete(ctx, domain.SessionKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *Client) refresh(ctx context.Context, id *domain.Identity) (*domain.Identity, error) {
	if id.RefreshToken == "" {
		return nil, apperrors.Unauthorized("session has no refresh token")
	}
	req := refreshRequest{GrantType: "refresh_token", RefreshToken: id.RefreshToken}

	var resp refreshResponse
	if err := c.post(ctx, c.secureTokenURL("token"), req, &resp); err != nil {
		return nil, err
	}

	out := *id
	out.IDToken = resp.IDToken
	if resp.RefreshToken != "" {
		out.RefreshToken = resp.RefreshToken
	}
	out.ExpiresAt = c.expiry(resp.ExpiresIn)
	if err := storage.SetJSON(ctx, c.store, domain.SessionKey, out); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	c.logger.DebugContext(ctx, "id token refreshed", slog.String("uid", out.UID))
	return &out, nil
}

func (c *Client) persist(ctx context.Context, resp signInResponse) (*domain.Identity, error) {
	id := &domain.Identity{
		UID:          resp.LocalID,
		Email:        resp.Email,
		PhoneNumber:  resp.PhoneNumber,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
	if id.UID == "" || id.IDToken == "" {
		return nil, fmt.Errorf("identity provider returned no credentials")
	}
	if err := storage.SetJSON(ctx, c.store, domain.SessionKey, id); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	c.logger.InfoContext(ctx, "member signed in", slog.String("uid", id.UID))
	return id, nil
}

func (c *Client) expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return c.now().Add(time.Duration(secs) * time.Second)
}

func (c *Client) identityURL(method string) string {
	return c.cfg.IdentityBaseURL + "/v1/" + method + "?key=" + url.QueryEscape(c.cfg.APIKey)
}

func (c *Client) secureTokenURL(method string) string {
	return c.cfg.SecureTokenBaseURL + "/v1/" + method + "?key=" + url.QueryEscape(c.cfg.APIKey)
}

func (c *Client) post(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal identity request: %w", err)
	}

	resp, err := c.sender.Send(ctx, http.MethodPost, url, "", body)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseProviderError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseProviderError maps the provider's {"error":{"code":400,"message":"X"}}
// body onto AppErrors. Unknown shapes fall back to httpclient.ParseResponseError.
func parseProviderError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var pe providerError
	if json.Unmarshal(data, &pe) != nil || pe.Error.Message == "" {
		resp.Body = io.NopCloser(bytes.NewReader(data))
		return httpclient.ParseResponseError(resp, "identity")
	}

	// Messages look like "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : detail".
	code, _, _ := strings.Cut(pe.Error.Message, " ")
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return apperrors.Unauthorized("invalid email or password")
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "INVALID_ID_TOKEN":
		return apperrors.Unauthorized("session expired, please sign in again")
	case "INVALID_CODE":
		return apperrors.InvalidInput("invalid OTP")
	case "SESSION_EXPIRED", "INVALID_SESSION_INFO":
		return apperrors.InvalidInput("verification expired, request a new code")
	case "INVALID_PHONE_NUMBER", "MISSING_PHONE_NUMBER":
		return apperrors.InvalidInput("failed to send OTP, check the number format")
	case "TOO_MANY_ATTEMPTS_TRY_LATER", "QUOTA_EXCEEDED":
		return apperrors.ServiceUnavailable("too many attempts, try again later")
	}
	return &apperrors.AppError{
		Code:    "IDENTITY_" + code,
		Message: "identity: " + strings.ToLower(strings.ReplaceAll(code, "_", " ")),
		Status:  resp.StatusCode,
		Err:     apperrors.ErrInvalidInput,
	}
}
