package orchestrator_application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	db "github.com/ERRORIK404/Session_Calculator/database"
	calc "github.com/ERRORIK404/Session_Calculator/internal/calculator_application"
	identity "github.com/ERRORIK404/Session_Calculator/internal/identity_application"
	conf "github.com/ERRORIK404/Session_Calculator/pkg/config"
	"github.com/ERRORIK404/Session_Calculator/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Orchestrator собирает сервисы и отдает их по HTTP и gRPC
type Orchestrator struct {
	config     *conf.Config
	identity   *identity.Identity
	sessions   *identity.SessionStore
	calculator *calc.Calculator
	history    *calc.History
	limiter    *rateLimiter
	decoder    *schema.Decoder
}

func New(config *conf.Config, database *db.DB) *Orchestrator {
	limits := calc.Limits{
		GuestCalculations: config.GUEST_CALCULATION_LIMIT,
		GuestNotes:        config.GUEST_NOTE_LIMIT,
		GuestHistory:      config.GUEST_HISTORY_LIMIT,
		NoteMaxLength:     config.NOTE_MAX_LENGTH,
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	users := identity.New(database, identity.Options{
		MinPasswordLength: config.MIN_PASSWORD_LENGTH,
		HashCost:          config.HASH_COST,
		JWTSecret:         config.JWT_SECRET,
		TokenTTL:          config.TOKEN_TTL,
	})

	return &Orchestrator{
		config:     config,
		identity:   users,
		sessions:   identity.NewSessionStore(database, config.SESSION_TTL),
		calculator: calc.NewCalculator(database, limits),
		history:    calc.NewHistory(database, limits),
		limiter:    newRateLimiter(config.RATE_LIMIT_RPS, config.RATE_LIMIT_BURST),
		decoder:    decoder,
	}
}

// Router возвращает HTTP обработчик со всеми маршрутами API
func (o *Orchestrator) Router() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %q not allowed", r.Method))
	})
	router.Use(loggingMiddleware)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(o.sessionMiddleware, o.csrfMiddleware)

	limited := func(h http.HandlerFunc) http.Handler {
		return o.limiter.middleware(h)
	}

	api.HandleFunc("/auth/csrf", o.csrfHandler).Methods(http.MethodGet)
	api.Handle("/auth/register", limited(o.registerHandler)).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(o.loginHandler)).Methods(http.MethodPost)
	api.Handle("/auth/logout", limited(o.logoutHandler)).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", o.meHandler).Methods(http.MethodGet)

	api.Handle("/calculate", limited(o.calculateHandler)).Methods(http.MethodPost)
	api.HandleFunc("/history", o.historyHandler).Methods(http.MethodGet)
	api.HandleFunc("/history/clear", o.clearHistoryHandler).Methods(http.MethodDelete)
	api.HandleFunc("/history/{id:[0-9]+}", o.deleteHistoryHandler).Methods(http.MethodDelete)

	return trimSlashMiddleware(o.corsMiddleware(router))
}

// RunServer поднимает HTTP и gRPC серверы и останавливает их, когда отменяется ctx
func (o *Orchestrator) RunServer(ctx context.Context) error {
	lis, err := net.Listen("tcp", o.config.GRPC_ADDR)
	if err != nil {
		return fmt.Errorf("failed to listen %s: %w", o.config.GRPC_ADDR, err)
	}
	grpcServer := o.NewGRPCServer()

	httpServer := &http.Server{
		Addr:              o.config.HTTP_ADDR,
		Handler:           o.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	log.WithFields(log.Fields{
		"http": o.config.HTTP_ADDR,
		"grpc": o.config.GRPC_ADDR,
	}).Info("orchestrator started")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("http shutdown: %w", err)
	}
	return runErr
}

// PurgeSessions удаляет истекшие сессии
func (o *Orchestrator) PurgeSessions(ctx context.Context) (int64, error) {
	return o.sessions.Purge(ctx)
}
