package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/httputil"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// idTokenTTL is reported to clients as expiresIn. Member id tokens are the
// member uid and never actually expire here.
const idTokenTTL = "3600"

type providerErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type providerErrorBody struct {
	Error providerErrorDetail `json:"error"`
}

func writeProviderError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, providerErrorBody{
		Error: providerErrorDetail{Code: http.StatusBadRequest, Message: message},
	})
}

// providerFailure writes store failures in the provider's error shape.
func (h *Handler) providerFailure(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperrors.As(err); ok && appErr.Status < http.StatusInternalServerError {
		writeProviderError(w, appErr.Message)
		return
	}
	h.fail(w, r, err)
}

func decodeProvider(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProviderError(w, "INVALID_JSON")
		return false
	}
	return true
}

type passwordSignInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func signInFor(m *member) signInResponse {
	return signInResponse{
		LocalID:      m.uid,
		Email:        m.email,
		PhoneNumber:  m.phone,
		IDToken:      m.uid,
		RefreshToken: m.refresh,
		ExpiresIn:    idTokenTTL,
	}
}

// SignInWithPassword handles POST /v1/accounts:signInWithPassword. Unknown
// emails are registered on first use.
func (h *Handler) SignInWithPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordSignInRequest
	if !decodeProvider(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		writeProviderError(w, "MISSING_EMAIL")
		return
	case validator.Validate(struct {
		Email string `validate:"email"`
	}{email}) != nil:
		writeProviderError(w, "INVALID_EMAIL")
		return
	case req.Password == "":
		writeProviderError(w, "MISSING_PASSWORD")
		return
	case len(req.Password) < 6:
		writeProviderError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}

	m, err := h.store.SignInEmail(email, req.Password)
	if err != nil {
		h.providerFailure(w, r, err)
		return
	}
	logger.FromContext(r.Context()).InfoContext(r.Context(), "member signed in",
		slog.String("uid", m.uid),
		slog.String("method", "password"),
	)
	httputil.WriteJSON(w, http.StatusOK, signInFor(m))
}

type sendCodeRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	RecaptchaToken string `json:"recaptchaToken"`
}

type sendCodeResponse struct {
	SessionInfo string `json:"sessionInfo"`
}

// SendVerificationCode handles POST /v1/accounts:sendVerificationCode. No SMS
// is sent; the configured code is logged instead.
func (h *Handler) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if !decodeProvider(w, r, &req) {
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		writeProviderError(w, "MISSING_PHONE_NUMBER")
		return
	}
	if validator.Validate(struct {
		Phone string `validate:"e164"`
	}{phone}) != nil {
		writeProviderError(w, "INVALID_PHONE_NUMBER : Invalid format.")
		return
	}

	info := h.store.StartPhone(phone)
	logger.FromContext(r.Context()).InfoContext(r.Context(), "verification code issued",
		slog.String("phone", phone),
		slog.String("code", h.otp),
	)
	httputil.WriteJSON(w, http.StatusOK, sendCodeResponse{SessionInfo: info})
}

type phoneSignInRequest struct {
	SessionInfo string `json:"sessionInfo"`
	Code        string `json:"code"`
}

// SignInWithPhoneNumber handles POST /v1/accounts:signInWithPhoneNumber
func (h *Handler) SignInWithPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var req phoneSignInRequest
	if !decodeProvider(w, r, &req) {
		return
	}
	if req.SessionInfo == "" {
		writeProviderError(w, "MISSING_SESSION_INFO")
		return
	}
	if req.Code == "" {
		writeProviderError(w, "MISSING_CODE")
		return
	}

	m, err := h.store.VerifyPhone(req.SessionInfo, req.Code, h.otp)
	if err != nil {
		h.providerFailure(w, r, err)
		return
	}
	logger.FromContext(r.Context()).InfoContext(r.Context(), "member signed in",
		slog.String("uid", m.uid),
		slog.String("method", "phone"),
	)
	httputil.WriteJSON(w, http.StatusOK, signInFor(m))
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
}

// RefreshToken handles POST /v1/token
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeProvider(w, r, &req) {
		return
	}
	if req.GrantType != "refresh_token" {
		writeProviderError(w, "INVALID_GRANT_TYPE")
		return
	}
	if req.RefreshToken == "" {
		writeProviderError(w, "MISSING_REFRESH_TOKEN")
		return
	}

	m, err := h.store.Refresh(req.RefreshToken)
	if err != nil {
		h.providerFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, refreshResponse{
		IDToken:      m.uid,
		RefreshToken: m.refresh,
		ExpiresIn:    idTokenTTL,
		TokenType:    "Bearer",
		UserID:       m.uid,
	})
}
