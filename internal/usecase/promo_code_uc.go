package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// generatePromoCode creates a secure, random, human-readable code.
// Format: XXXX-XXXX-XXXX with a charset that avoids O/0, I/1, l.
func generatePromoCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 12

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer[0:4]) + "-" + string(buffer[4:8]) + "-" + string(buffer[8:12]), nil
}

// PromoCodeUseCase covers staff-side code management. Redemption lives in
// RedemptionUseCase.
type PromoCodeUseCase struct {
	codes repository.PromoCodeRepository
	audit *AuditRecorder
	log   *zerolog.Logger
}

func NewPromoCodeUseCase(codes repository.PromoCodeRepository, audit *AuditRecorder, logger *zerolog.Logger) *PromoCodeUseCase {
	return &PromoCodeUseCase{codes: codes, audit: audit, log: logger}
}

// CreateBatch generates n fresh codes. promotionID may be nil for standalone
// codes; bonusPoints of 0 falls back to the configured default at redemption
// time.
func (u *PromoCodeUseCase) CreateBatch(ctx context.Context, n int, promotionID *string, bonusPoints int, expiresAt *time.Time, createdBy *string) ([]*model.PromoCode, error) {
	if n <= 0 || n > 10000 {
		return nil, fmt.Errorf("%w: batch size %d", domain.ErrInvalidArgument, n)
	}

	out := make([]*model.PromoCode, 0, n)
	for i := 0; i < n; i++ {
		code, err := generatePromoCode()
		if err != nil {
			return out, err
		}
		pc, err := model.NewPromoCode("", code, promotionID, bonusPoints, expiresAt)
		if err != nil {
			return out, err
		}
		if err := u.codes.Save(ctx, repository.NoTX, pc); err != nil {
			return out, err
		}
		out = append(out, pc)
	}

	details := fmt.Sprintf("%d codes, bonus %d", len(out), bonusPoints)
	if expiresAt != nil {
		details += ", expires " + expiresAt.Format("2006-01-02")
	}
	entity := "promo_code"
	u.audit.Record(createdBy, "promo_code.batch", details, &entity, nil)
	return out, nil
}
