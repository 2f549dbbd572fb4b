package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ocemtechies/memberhub/internal/auth"
	appconfig "github.com/ocemtechies/memberhub/internal/config"
	"github.com/ocemtechies/memberhub/internal/contact"
	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/events"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/notifications"
	"github.com/ocemtechies/memberhub/internal/otp"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/internal/web"
	"github.com/ocemtechies/memberhub/pkg/config"
	"github.com/ocemtechies/memberhub/pkg/cookie"
	"github.com/ocemtechies/memberhub/pkg/httpserver"
	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/pg"
	"github.com/ocemtechies/memberhub/pkg/ratelimiter"
	"github.com/ocemtechies/memberhub/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appCfg appconfig.Config
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.AppEnv, "memberhub"))
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	sender, err := newSender(emailCfg, appCfg, log)
	if err != nil {
		return err
	}

	cookies, err := cookie.New(appCfg.CookieSecrets,
		cookie.WithSecure(appCfg.IsProduction()))
	if err != nil {
		return err
	}

	provider := identity.NewLocalProvider(
		identity.NewPgStore(pool),
		email.NewVerificationMailer(sender),
		identity.Config{
			TokenSecret:     appCfg.TokenSecret,
			SessionTTL:      appCfg.SessionTTL,
			VerificationTTL: appCfg.VerificationTTL,
			CallbackURL:     appCfg.AppURL + "/auth/callback",
		},
		log,
	)

	profiles := profile.NewPgRepository(pool)
	notificationRepo := notifications.NewPgRepository(pool)

	authSvc := auth.NewService(provider, profiles,
		auth.WithLogger(log),
		auth.WithAfterSignUp(auth.WelcomeHook(notificationRepo, sender, log)),
	)

	otpSvc := otp.NewService(otp.NewPgRepository(pool),
		otp.WithTTL(appCfg.OTPTTL),
		otp.WithLogger(log),
	)
	go otpSvc.RunSweeper(ctx, appCfg.OTPSweepInterval)

	otpLimiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(redisClient, "memberhub:ratelimit"),
		ratelimiter.Config{
			Capacity:       appCfg.OTPRateCapacity,
			RefillRate:     1,
			RefillInterval: appCfg.OTPRateRefill,
		},
	)
	if err != nil {
		return err
	}

	eventsSvc := events.NewService(events.NewPgRepository(pool), profiles, sender, log)
	contactSvc := contact.NewService(contact.NewPgRepository(pool), sender, emailCfg.AdminEmail, log)

	handler := web.NewRouter(web.Deps{
		Log:           log,
		Cookies:       cookies,
		Auth:          authSvc,
		Provider:      provider,
		OTP:           otpSvc,
		OTPLimiter:    otpLimiter,
		Sender:        sender,
		Events:        eventsSvc,
		Contact:       contactSvc,
		Notifications: notificationRepo,
		SessionTTL:    appCfg.SessionTTL,
		SecureCookies: appCfg.IsProduction(),
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	server := httpserver.New(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "starting server",
		slog.String("addr", httpCfg.Addr),
		slog.String("env", appCfg.AppEnv))

	return server.Run(ctx, handler)
}

// newSender picks Postmark when tokens are configured, otherwise the
// file-based development sender.
func newSender(cfg email.Config, appCfg appconfig.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken != "" {
		return email.NewPostmarkSender(cfg)
	}
	if appCfg.IsProduction() {
		return nil, email.ErrInvalidConfig
	}
	log.Info("postmark not configured, writing emails to disk",
		slog.String("dir", cfg.DevOutputDir))
	return email.NewDevSender(cfg.DevOutputDir), nil
}
