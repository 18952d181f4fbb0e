package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/migrate"
	apphttp "github.com/HelloCrackers/hellocrackers-2-sub001/internal/http"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/mailer"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/email"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/live"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
)

const sessionPurgeEvery = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := migrate.Up(ctx, gdb, log); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("REDIS_URL")
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable; catalog cache reads will fall through")
		}
		defer rdb.Close()
	}

	store, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("storage")
	}
	log.WithField("driver", store.Driver).Info("storage ready")

	mail, err := mailer.FromConfig(cfg.Mail, cfg.SMTP, log)
	if err != nil {
		log.WithError(err).Fatal("mailer")
	}

	var verifier auth.Verifier
	if cfg.FirebaseCredentialsFile != "" {
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.WithError(err).Fatal("firebase")
		}
		verifier = fv
	}
	authSvc := auth.NewService(gdb, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), verifier, cfg.SessionTTL, log)

	siteRepo := content.NewSettingsRepo(gdb)
	orderSvc := orders.NewService(gdb, cart.NewRepo(gdb), siteRepo, settings.NewRepo(gdb), log)

	notifier := email.NewNotifier(mail, cfg.Mail.From, cfg.Mail.FromName, cfg.StorefrontURL, siteRepo, orders.NewRepo(gdb), log)
	hub := live.NewHub(cfg.CORSOrigins, log)
	orderSvc.AddListener(notifier)
	orderSvc.AddListener(hub)

	deps := apphttp.Deps{
		Log:           log,
		DB:            gdb,
		Redis:         rdb,
		Storage:       store.Storage,
		Provider:      payments.NewRazorpay(cfg.RazorpayBaseURL),
		Auth:          authSvc,
		Orders:        orderSvc,
		Hub:           hub,
		SessionSecret: []byte(cfg.SessionSecret),
		CookieSecure:  cfg.CookieSecure,
		CORSOrigins:   cfg.CORSOrigins,
	}
	if store.Driver == "local" {
		deps.UploadsDir, deps.UploadsPrefix = cfg.Storage.LocalDir, cfg.Storage.LocalURLPrefix
	}

	go purgeSessions(ctx, authSvc, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apphttp.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	notifier.Wait()
}

func purgeSessions(ctx context.Context, svc *auth.Service, log logrus.FieldLogger) {
	t := time.NewTicker(sessionPurgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.PurgeExpiredSessions(ctx)
			if err != nil {
				log.WithError(err).Warn("session purge failed")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Info("expired sessions purged")
			}
		}
	}
}
