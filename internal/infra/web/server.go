package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"club-loyalty/internal/domain/ports/repository"
	red "club-loyalty/internal/infra/redis"
	"club-loyalty/internal/usecase"
)

// Server exposes two surfaces on one port: the terminal API (bearer key,
// used by the club's workstations) and the admin API (JWT session cookie).
type Server struct {
	cardUC    *usecase.CardUseCase
	sessionUC usecase.SessionUseCase
	redeemUC  usecase.RedemptionUseCase
	ledgerUC  usecase.LedgerUseCase
	codeUC    *usecase.PromoCodeUseCase
	statsUC   *usecase.StatsUseCase
	promos    repository.PromotionRepository
	tiers     repository.TierRepository
	auditLogs repository.AuditLogRepository

	limiter         *red.RateLimiter
	auth            *AuthManager
	apiKey          string
	redeemPerMinute int
	log             *zerolog.Logger
}

func NewServer(
	cardUC *usecase.CardUseCase,
	sessionUC usecase.SessionUseCase,
	redeemUC usecase.RedemptionUseCase,
	ledgerUC usecase.LedgerUseCase,
	codeUC *usecase.PromoCodeUseCase,
	statsUC *usecase.StatsUseCase,
	promos repository.PromotionRepository,
	tiers repository.TierRepository,
	auditLogs repository.AuditLogRepository,
	limiter *red.RateLimiter,
	auth *AuthManager,
	apiKey string,
	redeemPerMinute int,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "web").Logger()
	return &Server{
		cardUC:          cardUC,
		sessionUC:       sessionUC,
		redeemUC:        redeemUC,
		ledgerUC:        ledgerUC,
		codeUC:          codeUC,
		statsUC:         statsUC,
		promos:          promos,
		tiers:           tiers,
		auditLogs:       auditLogs,
		limiter:         limiter,
		auth:            auth,
		apiKey:          apiKey,
		redeemPerMinute: redeemPerMinute,
		log:             &webLog,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Terminal surface
		r.Group(func(r chi.Router) {
			r.Use(s.terminalAuth)

			r.Post("/cards", s.registerCard)
			r.Get("/cards/{id}", s.getCard)
			r.Get("/cards/{id}/transactions", s.listCardTransactions)
			r.Get("/cards/{id}/sessions", s.listCardSessions)
			r.Get("/cards/by-number/{number}", s.getCardByNumber)

			r.Post("/sessions", s.startSession)
			r.Get("/sessions/{id}", s.getSession)
			r.Post("/sessions/{id}/finish", s.finishSession)

			r.Post("/redemptions", s.redeem)
		})

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.adminLogin)
			r.Post("/logout", s.adminLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.adminAuth)

				r.Get("/stats", s.adminStats)
				r.Get("/tiers", s.adminListTiers)
				r.Get("/promotions", s.adminListPromotions)
				r.Post("/promotions", s.adminCreatePromotion)
				r.Post("/promo-codes", s.adminCreatePromoCodes)
				r.Post("/adjustments", s.adminAdjust)
				r.Get("/audit", s.adminListAudit)
			})
		})
	})

	return r
}

// terminalAuth gates the workstation API behind the shared bearer key.
func (s *Server) terminalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("terminal API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminAuth requires a valid admin session (cookie or bearer JWT).
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil || claims.Role != "admin" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHTTPServer wraps the router with sane timeouts for a LAN deployment.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
