// Package web wires the HTTP surface: page routes behind the access
// guard, the JSON API, and the email-verification callback.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/contact"
	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/events"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/notifications"
	"github.com/ocemtechies/memberhub/internal/otp"
	"github.com/ocemtechies/memberhub/pkg/cookie"
	"github.com/ocemtechies/memberhub/pkg/ratelimiter"
)

// Deps carries everything the router needs.
type Deps struct {
	Log           *slog.Logger
	Cookies       *cookie.Manager
	Auth          *auth.Service
	Provider      identity.Provider
	OTP           *otp.Service
	OTPLimiter    ratelimiter.RateLimiter
	Sender        email.Sender
	Events        *events.Service
	Contact       *contact.Service
	Notifications notifications.Repository

	SessionTTL    time.Duration
	SecureCookies bool
}

// NewRouter assembles the full route tree.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	guard := NewAccessGuard(deps.Cookies, deps.Provider)

	authH := &authHandler{
		svc:        deps.Auth,
		provider:   deps.Provider,
		otp:        deps.OTP,
		otpLimiter: deps.OTPLimiter,
		sender:     deps.Sender,
		cookies:    deps.Cookies,
		sessionTTL: deps.SessionTTL,
		secure:     deps.SecureCookies,
		log:        log,
	}
	profileH := &profileHandler{svc: deps.Auth, log: log}
	siteH := &siteHandler{
		events:        deps.Events,
		contact:       deps.Contact,
		notifications: deps.Notifications,
		log:           log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// JSON API. Auth endpoints are open; member endpoints require a
	// session and answer 401 rather than redirecting.
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", authH.sendOTP)
			r.Post("/verify-otp", authH.verifyOTP)
			r.Post("/signin", authH.signIn)
			r.Post("/signup", authH.signUp)
			r.Post("/signout", authH.signOut)
			r.Post("/resend-verification", authH.resendVerification)
		})

		r.Post("/contact", siteH.submitContact)
		r.Get("/events", siteH.listEvents)
		r.Get("/events/{id}", siteH.getEvent)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireUser)
			r.Get("/profile", profileH.get)
			r.Patch("/profile", profileH.update)
			r.Get("/events/registrations", siteH.listMyRegistrations)
			r.Post("/events/{id}/register", siteH.registerForEvent)
			r.Delete("/events/{id}/register", siteH.cancelRegistration)
			r.Get("/notifications", siteH.listNotifications)
			r.Post("/notifications/{id}/read", siteH.markNotificationRead)
			r.Post("/notifications/read-all", siteH.markAllNotificationsRead)
		})
	})

	// The verification callback sits outside the guard: it must run even
	// with no session, and sets one itself on success.
	r.Get("/auth/callback", authH.callback)

	// Page routes behind the access guard.
	r.Group(func(r chi.Router) {
		r.Use(guard.Handler)

		r.Get("/", pageStub("Home"))
		r.Get("/about", pageStub("About"))
		r.Get("/contact", pageStub("Contact"))
		r.Get("/resources", pageStub("Resources"))
		r.Get("/events", pageStub("Events"))
		r.Get("/events/*", pageStub("Event"))

		r.Get("/auth/login", pageStub("Login"))
		r.Get("/auth/register", pageStub("Register"))
		r.Get("/auth/otp-login", pageStub("OTP Login"))

		r.Get("/dashboard", pageStub("Dashboard"))
		r.Get("/dashboard/*", pageStub("Dashboard"))
		r.Get("/profile", pageStub("Profile"))
		r.Get("/admin", pageStub("Admin"))
		r.Get("/admin/*", pageStub("Admin"))
	})

	return r
}
