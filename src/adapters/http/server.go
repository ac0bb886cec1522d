package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gramgram/src/domain"
	"gramgram/src/infra/metrics"
	"gramgram/src/services/likeableperson"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MemberIDHeader é preenchido pelo gateway de autenticação, que fica fora deste serviço.
const MemberIDHeader = "X-Member-Id"

type HealthCheck func(ctx context.Context) error

// Server representa o servidor HTTP da API
type Server struct {
	logger                *slog.Logger
	server                *http.Server
	mux                   *http.ServeMux
	port                  int
	likeablePersonService *likeableperson.LikeablePersonService
	healthChecks          []HealthCheck
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	likeablePersonService *likeableperson.LikeablePersonService,
	healthChecks ...HealthCheck,
) *Server {
	server := &Server{
		mux:                   http.NewServeMux(),
		port:                  port,
		logger:                logger,
		likeablePersonService: likeablePersonService,
		healthChecks:          healthChecks,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.instrument(server.mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Rotas de Leitura
	server.mux.HandleFunc("GET /v1/likeable-people", server.ListOutgoing)
	server.mux.HandleFunc("GET /v1/likeable-people/incoming", server.ListIncoming)
	server.mux.HandleFunc("GET /v1/likeable-people/{id}/modify", server.ShowModify)

	// Rotas de Escritas
	server.mux.HandleFunc("POST /v1/likeable-people", server.Like)
	server.mux.HandleFunc("PUT /v1/likeable-people/{id}", server.Modify)
	server.mux.HandleFunc("DELETE /v1/likeable-people/{id}", server.Cancel)

	server.mux.Handle("GET /metrics", promhttp.Handler())
	server.mux.HandleFunc("GET /healthz", server.Health)

	return server
}

// now usa o relógio do serviço, para o DTO concordar com a decisão de cooldown.
func (s *Server) now() time.Time {
	return s.likeablePersonService.Now()
}

// Handler expõe o handler completo (mux + métricas) para testes.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.healthChecks {
		if err := check(r.Context()); err != nil {
			s.logger.Error("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorFrom lê o membro autenticado do header. Ausente ou inválido vira um
// ator não autenticado e o serviço responde ErrUnauthenticated.
func actorFrom(r *http.Request) domain.Actor {
	memberID, err := strconv.ParseInt(r.Header.Get(MemberIDHeader), 10, 64)
	if err != nil {
		return domain.Actor{}
	}
	return domain.Actor{MemberID: memberID}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		// r.Pattern só é preenchido pelo mux; rotas inexistentes caem em "unmatched".
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		metrics.HttpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
