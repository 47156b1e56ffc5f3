package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/infra/metrics"
)

const (
	WebhookPath  = "/webhook"
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxBodyBytes = 1 << 20
)

// UpdateAcceptor queues an update for processing without blocking.
type UpdateAcceptor interface {
	Accept(ctx context.Context, update tgbotapi.Update)
}

// Server exposes the Telegram webhook plus health and metrics endpoints.
type Server struct {
	acceptor UpdateAcceptor
	secret   string
	addr     string
	log      *zerolog.Logger
	srv      *http.Server
}

func NewServer(cfg *config.BotConfig, acceptor UpdateAcceptor, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "HTTPServer").Logger()
	s := &Server{
		acceptor: acceptor,
		secret:   cfg.WebhookSecret,
		addr:     fmt.Sprintf(":%d", cfg.Port),
		log:      &srvLog,
	}
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log))

	r.Post(WebhookPath, s.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleWebhook acknowledges every authenticated delivery with 200 so Telegram never retries.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)

	if s.secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			metrics.IncUpdateDropped("unauthorized")
			l.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret mismatch")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		metrics.IncUpdateDropped("invalid")
		l.Warn().Err(err).Msg("undecodable webhook body")
		writeOK(w)
		return
	}

	s.acceptor.Accept(r.Context(), update)
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
