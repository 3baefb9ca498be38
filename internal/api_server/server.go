package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/auth"
	"github.com/clipforge/clipforge/internal/config"
	handlers "github.com/clipforge/clipforge/internal/handlers/v1"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/pkg/metrics"
	"github.com/clipforge/clipforge/pkg/middleware"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg         *config.Config
	store       store.Store
	listener    net.Listener
	objectStore service.ObjectStore
	metadata    service.MetadataResolver
	queue       service.TaskQueue
}

// New returns a new instance of the clipforge API server. All collaborators
// are constructed by the caller and injected here.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	objectStore service.ObjectStore,
	metadata service.MetadataResolver,
	queue service.TaskQueue,
) *Server {
	return &Server{
		cfg:         cfg,
		store:       store,
		listener:    listener,
		objectStore: objectStore,
		metadata:    metadata,
		queue:       queue,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	issuer := auth.NewTokenIssuer(
		s.cfg.Service.Auth.JwtSecret,
		time.Duration(s.cfg.Service.Auth.JwtExpireHours)*time.Hour,
	)

	jobService := service.NewJobService(s.store, s.objectStore, s.metadata, s.queue, s.cfg.Upload.MaxFileSize)
	userService := service.NewUserService(s.store, issuer)
	h := handlers.NewServiceHandler(userService, jobService, s.cfg.Upload.MaxFileSize)

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router := chi.NewRouter()
	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.CorsOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Signup and login issue the tokens everything else requires.
	router.Post("/auth/signup", h.Signup)
	router.Post("/auth/login", h.Login)

	router.Group(func(r chi.Router) {
		r.Use(authenticator.Authenticator)

		r.Get("/auth/me", h.Me)
		r.Post("/upload/video", h.UploadVideo)
		r.Post("/upload/youtube", h.UploadYouTube)
		r.Get("/upload/status/{jobId}", h.JobStatus)
		r.Get("/upload/jobs", h.ListJobs)
	})

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
