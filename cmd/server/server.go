package server

import (
	"context"
	"net/http"
	"time"

	appkafka "example.com/tweetfeed/internal/broker"
	"example.com/tweetfeed/internal/credential"
	config "example.com/tweetfeed/internal/init"
	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/metrics"
	"example.com/tweetfeed/internal/middleware"
	"example.com/tweetfeed/internal/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	store         store.StoreInterface
	notifications store.NotificationStore // nil when notifications are disabled
	events        *appkafka.Publisher
	issuer        *credential.Issuer
	uploadDir     string
	maxUpload     int64
	rateLimit     int
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Notifications   store.NotificationStore
	Events          *appkafka.Publisher
	CredentialKey   string
	UploadDir       string
	MaxUploadBytes  int64
	RateLimitPerMin int
}

var logg = logger.New()

func New(st store.StoreInterface, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "./uploads"
	}
	return &Server{
		store:         st,
		notifications: opts.Notifications,
		events:        opts.Events,
		issuer:        credential.NewIssuer(opts.CredentialKey),
		uploadDir:     opts.UploadDir,
		maxUpload:     opts.MaxUploadBytes,
		rateLimit:     opts.RateLimitPerMin,
	}
}

// Routes builds the HTTP handler. Everything under /api except registration
// requires the api-key header.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
		}

		// Public endpoint for user registration
		r.Post("/users", s.registerHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.store))

			r.Get("/tweets", s.feedHandler)
			r.Post("/tweets", s.createTweetHandler)
			r.Delete("/tweets/{id}", s.deleteTweetHandler)
			r.Post("/tweets/{id}/likes", s.likeHandler)
			r.Delete("/tweets/{id}/likes", s.unlikeHandler)

			r.Post("/medias", s.uploadMediaHandler)

			r.Get("/users/me", s.meHandler)
			if s.notifications != nil {
				r.Get("/users/me/notifications", s.notificationsHandler)
			}
			r.Get("/users/{id}", s.userHandler)
			r.Post("/users/{id}/follow", s.followHandler)
			r.Delete("/users/{id}/follow", s.unfollowHandler)
		})
	})

	return r
}

// Run serves s on cfg.ServerAddr (TLS when configured) until ctx is cancelled,
// then shuts down gracefully.
func Run(ctx context.Context, s *Server, cfg *config.Config) {
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 30 * time.Second,
	}

	// --- Start server in a goroutine ---
	go func() {
		var err error
		if cfg.TLSEnabled() {
			logg.Info("server", "Starting HTTPS server on "+cfg.ServerAddr)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+cfg.ServerAddr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
