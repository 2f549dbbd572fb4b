package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/otp"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/cookie"
	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/ratelimiter"
	"github.com/ocemtechies/memberhub/pkg/sanitizer"
)

type authHandler struct {
	svc        *auth.Service
	provider   identity.Provider
	otp        *otp.Service
	otpLimiter ratelimiter.RateLimiter
	sender     email.Sender
	cookies    *cookie.Manager
	sessionTTL time.Duration
	secure     bool
	log        *slog.Logger
}

func (h *authHandler) setSessionCookie(w http.ResponseWriter, token string) {
	h.cookies.SetSigned(w, SessionCookie, token,
		cookie.WithMaxAge(int(h.sessionTTL.Seconds())),
		cookie.WithSecure(h.secure))
}

func (h *authHandler) clearSessionCookie(w http.ResponseWriter) {
	h.cookies.Delete(w, SessionCookie)
}

type sendOTPRequest struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// sendOTP generates a passcode and emails it. Per-email rate limiting
// keeps the endpoint from being used as a mail cannon.
func (h *authHandler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	otpType := otp.Type(req.Type)
	if req.Type == "" {
		otpType = otp.TypeLogin
	}
	if !otpType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid OTP type")
		return
	}

	normalized := sanitizer.NormalizeEmail(req.Email)
	result, err := h.otpLimiter.Allow(r.Context(), "otp:"+normalized)
	if err != nil {
		h.log.ErrorContext(r.Context(), "otp rate limiter unavailable", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}
	if !result.Allowed() {
		w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter()))
		respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	code, err := h.otp.Generate(r.Context(), normalized, otpType)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to generate otp", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	if err := h.sender.Send(r.Context(), email.OTPMessage(normalized, code)); err != nil {
		h.log.ErrorContext(r.Context(), "failed to send otp email",
			logger.Error(err), logger.Email(sanitizer.MaskEmail(normalized)))
		respondError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP sent successfully",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Type  string `json:"type"`
}

// verifyOTP consumes a passcode. For the login type a successful
// verification also signs the member in and sets the session cookie.
func (h *authHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil ||
		strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		respondError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	otpType := otp.Type(req.Type)
	if req.Type == "" {
		otpType = otp.TypeLogin
	}
	if !otpType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid OTP type")
		return
	}

	ok, err := h.otp.Verify(r.Context(), req.Email, otpType, strings.TrimSpace(req.OTP))
	if err != nil {
		h.log.ErrorContext(r.Context(), "otp verification failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to verify OTP")
		return
	}
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	if otpType != otp.TypeLogin {
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	result, err := h.svc.SignInWithOTP(r.Context(), req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, auth.UserMessage(err))
		return
	}

	h.setSessionCookie(w, result.Session.Token)
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.Session.Identity,
		"profile": result.Profile,
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil ||
		strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, auth.UserMessage(err))
		return
	}

	h.setSessionCookie(w, result.Session.Token)
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.Session.Identity,
		"profile": result.Profile,
	})
}

type signUpRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	StudentID   *string `json:"student_id,omitempty"`
	Faculty     *string `json:"faculty,omitempty"`
	YearOfStudy *int    `json:"year_of_study,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

func (h *authHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil ||
		strings.TrimSpace(req.Email) == "" || req.Password == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		respondError(w, http.StatusBadRequest, "Email, password, first name, and last name are required")
		return
	}

	prof, err := h.svc.SignUp(r.Context(), auth.SignUpData{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		StudentID:   req.StudentID,
		Faculty:     req.Faculty,
		YearOfStudy: req.YearOfStudy,
		Phone:       req.Phone,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, auth.UserMessage(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Account created. Please check your email to verify your address.",
		"profile": prof,
	})
}

func (h *authHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if token, err := h.cookies.GetSigned(r, SessionCookie); err == nil {
		if err := h.svc.SignOut(r.Context(), token); err != nil {
			h.log.WarnContext(r.Context(), "failed to revoke session", logger.Error(err))
		}
	}

	// The cookie is cleared regardless: the client is signed out locally
	// even when revocation fails.
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (h *authHandler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.provider.ResendVerification(r.Context(), req.Email); err != nil {
		h.log.ErrorContext(r.Context(), "failed to resend verification", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to resend verification email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "If an account exists for this address, a verification email has been sent.",
	})
}

// callback finishes email verification: it exchanges the single-use code
// for a session and lands the member on a role-appropriate page. Any
// failure sends the user back to login with a verification error flag.
func (h *authHandler) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	next := r.URL.Query().Get("next")

	if code == "" {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	result, err := h.svc.ExchangeCode(r.Context(), code)
	if err != nil {
		h.log.WarnContext(r.Context(), "verification code exchange failed", logger.Error(err))
		http.Redirect(w, r, "/auth/login?error=verification_failed", http.StatusFound)
		return
	}

	h.setSessionCookie(w, result.Session.Token)

	redirectTo := "/dashboard"
	if result.Profile.Role == profile.RoleAdmin {
		redirectTo = "/admin"
	}
	if next != "" && next != "/" {
		redirectTo = next
	}

	target, err := url.Parse(redirectTo)
	if err != nil || target.IsAbs() || !strings.HasPrefix(target.Path, "/") {
		target = &url.URL{Path: "/dashboard"}
	}
	query := target.Query()
	query.Set("verified", "true")
	target.RawQuery = query.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
