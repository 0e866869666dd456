package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	red "club-loyalty/internal/infra/redis"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is
// a 500 with a generic body; details stay in the log, not the response.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCardNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCodeNotFound),
		errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidTimeRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrCodeAlreadyUsed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrCodeExpired):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, domain.ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrBusy):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// ===== Cards =====

type cardResponse struct {
	ID             string  `json:"id"`
	Number         string  `json:"number"`
	UserID         string  `json:"user_id"`
	Points         int     `json:"points"`
	Tier           string  `json:"tier"`
	DiscountFactor float64 `json:"discount_factor"`
}

func (s *Server) cardToResponse(card *model.Card) (*cardResponse, error) {
	tier, err := s.cardUC.Tier(card)
	if err != nil {
		return nil, err
	}
	return &cardResponse{
		ID:             card.ID,
		Number:         card.Number,
		UserID:         card.UserID,
		Points:         card.Points,
		Tier:           tier.Name,
		DiscountFactor: tier.DiscountFactor,
	}, nil
}

type cardCreateRequest struct {
	Number string `json:"number"`
	UserID string `json:"user_id"`
}

func (s *Server) registerCard(w http.ResponseWriter, r *http.Request) {
	var req cardCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	card, err := s.cardUC.Register(r.Context(), req.Number, req.UserID, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.cardToResponse(card)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.cardUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.cardToResponse(card)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCardByNumber(w http.ResponseWriter, r *http.Request) {
	card, err := s.cardUC.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.cardToResponse(card)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Delta       int       `json:"delta"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) listCardTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.cardUC.Transactions(r.Context(), chi.URLParam(r, "id"), limitParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		data = append(data, transactionResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Delta:       t.Delta,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []transactionResponse `json:"data"`
	}{Data: data})
}

type sessionResponse struct {
	ID             string     `json:"id"`
	CardID         string     `json:"card_id"`
	ComputerNumber int        `json:"computer_number"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	Minutes        int        `json:"minutes"`
	PointsEarned   int        `json:"points_earned"`
	Status         string     `json:"status"`
}

func sessionToResponse(sess *model.Session) sessionResponse {
	return sessionResponse{
		ID:             sess.ID,
		CardID:         sess.CardID,
		ComputerNumber: sess.ComputerNumber,
		StartedAt:      sess.StartedAt,
		EndedAt:        sess.EndedAt,
		Minutes:        sess.Minutes,
		PointsEarned:   sess.PointsEarned,
		Status:         string(sess.Status),
	}
}

func (s *Server) listCardSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.cardUC.Sessions(r.Context(), chi.URLParam(r, "id"), limitParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		data = append(data, sessionToResponse(sess))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []sessionResponse `json:"data"`
	}{Data: data})
}

// ===== Sessions =====

type sessionStartRequest struct {
	CardID         string `json:"card_id"`
	ComputerNumber int    `json:"computer_number"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req sessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := s.sessionUC.Start(r.Context(), req.CardID, req.ComputerNumber)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

type sessionFinishRequest struct {
	EndedAt string `json:"ended_at"` // RFC3339; empty means now
}

type sessionFinishResponse struct {
	Session      sessionResponse `json:"session"`
	PointsEarned int             `json:"points_earned"`
	NewBalance   int             `json:"new_balance"`
	Tier         string          `json:"tier"`
	TierChanged  bool            `json:"tier_changed"`
}

func (s *Server) finishSession(w http.ResponseWriter, r *http.Request) {
	// An empty body means "finish now".
	var req sessionFinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	endedAt := time.Now()
	if req.EndedAt != "" {
		var err error
		endedAt, err = time.Parse(time.RFC3339, req.EndedAt)
		if err != nil {
			http.Error(w, "ended_at must be RFC3339", http.StatusBadRequest)
			return
		}
	}

	sess, res, err := s.sessionUC.Finish(r.Context(), chi.URLParam(r, "id"), endedAt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionFinishResponse{
		Session:      sessionToResponse(sess),
		PointsEarned: sess.PointsEarned,
		NewBalance:   res.NewBalance,
		Tier:         res.NewTier.Name,
		TierChanged:  res.TierChanged(),
	})
}

// ===== Redemptions =====

type redeemRequest struct {
	Code   string `json:"code"`
	CardID string `json:"card_id"`
}

type redeemResponse struct {
	BonusPoints int `json:"bonus_points"`
}

func (s *Server) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.CardID == "" {
		http.Error(w, "code and card_id are required", http.StatusBadRequest)
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(r.Context(), red.RedeemKey(req.CardID), s.redeemPerMinute, time.Minute)
		if err != nil {
			// Redis being down must not take redemptions with it.
			s.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			s.writeError(w, domain.ErrRateLimited)
			return
		}
	}

	bonus, err := s.redeemUC.Redeem(r.Context(), req.Code, req.CardID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redeemResponse{BonusPoints: bonus})
}

// ===== Admin =====

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (s *Server) adminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cards         int   `json:"cards"`
		UnusedCodes   int   `json:"unused_codes"`
		EarnedToday   int64 `json:"earned_today"`
		EarnedMonth   int64 `json:"earned_month"`
		BonusMonth    int64 `json:"bonus_month"`
		RedeemedMonth int64 `json:"redeemed_month"`
	}{
		Cards:         stats.Cards,
		UnusedCodes:   stats.UnusedCodes,
		EarnedToday:   stats.EarnedToday,
		EarnedMonth:   stats.EarnedMonth,
		BonusMonth:    stats.BonusMonth,
		RedeemedMonth: stats.RedeemedMonth,
	})
}

type tierResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	MinPoints      int     `json:"min_points"`
	DiscountFactor float64 `json:"discount_factor"`
}

func (s *Server) adminListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.tiers.ListAll(r.Context(), repository.NoTX)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := make([]tierResponse, 0, len(tiers))
	for _, t := range tiers {
		data = append(data, tierResponse{ID: t.ID, Name: t.Name, MinPoints: t.MinPoints, DiscountFactor: t.DiscountFactor})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []tierResponse `json:"data"`
	}{Data: data})
}

type promotionResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"is_active"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	BonusPercent float64    `json:"bonus_percent"`
	BonusPoints  int        `json:"bonus_points"`
}

func promotionToResponse(p *model.Promotion) promotionResponse {
	return promotionResponse{
		ID:           p.ID,
		Name:         p.Name,
		IsActive:     p.IsActive,
		StartsAt:     p.StartsAt,
		EndsAt:       p.EndsAt,
		BonusPercent: p.BonusPercent,
		BonusPoints:  p.BonusPoints,
	}
}

func (s *Server) adminListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := s.promos.ListAll(r.Context(), repository.NoTX)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := make([]promotionResponse, 0, len(promos))
	for _, p := range promos {
		data = append(data, promotionToResponse(p))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []promotionResponse `json:"data"`
	}{Data: data})
}

type promotionCreateRequest struct {
	Name         string     `json:"name"`
	BonusPercent float64    `json:"bonus_percent"`
	BonusPoints  int        `json:"bonus_points"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

func (s *Server) adminCreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	promo, err := model.NewPromotion("", req.Name, req.BonusPercent, req.BonusPoints, req.StartsAt, req.EndsAt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.promos.Save(r.Context(), repository.NoTX, promo); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, promotionToResponse(promo))
}

type promoCodeBatchRequest struct {
	Count       int        `json:"count"`
	PromotionID *string    `json:"promotion_id"`
	BonusPoints int        `json:"bonus_points"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (s *Server) adminCreatePromoCodes(w http.ResponseWriter, r *http.Request) {
	var req promoCodeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor := "admin"
	batch, err := s.codeUC.CreateBatch(r.Context(), req.Count, req.PromotionID, req.BonusPoints, req.ExpiresAt, &actor)
	if err != nil {
		s.writeError(w, err)
		return
	}

	codes := make([]string, 0, len(batch))
	for _, pc := range batch {
		codes = append(codes, pc.Code)
	}
	writeJSON(w, http.StatusCreated, struct {
		Codes []string `json:"codes"`
	}{Codes: codes})
}

type adjustRequest struct {
	CardID string `json:"card_id"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (s *Server) adminAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}

	res, err := s.ledgerUC.ApplyDelta(r.Context(), req.CardID, req.Delta, model.TransactionAdjust, "adjust: "+req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TransactionID string `json:"transaction_id"`
		NewBalance    int    `json:"new_balance"`
		Tier          string `json:"tier"`
	}{
		TransactionID: res.TransactionID,
		NewBalance:    res.NewBalance,
		Tier:          res.NewTier.Name,
	})
}

type auditResponse struct {
	ID          string    `json:"id"`
	ActorUserID *string   `json:"actor_user_id,omitempty"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	Entity      *string   `json:"entity,omitempty"`
	EntityID    *string   `json:"entity_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) adminListAudit(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.auditLogs.ListRecent(r.Context(), repository.NoTX, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, auditResponse{
			ID:          e.ID,
			ActorUserID: e.ActorUserID,
			Action:      e.Action,
			Details:     e.Details,
			Entity:      e.Entity,
			EntityID:    e.EntityID,
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []auditResponse `json:"data"`
	}{Data: data})
}
