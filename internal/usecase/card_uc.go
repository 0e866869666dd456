package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// CardUseCase covers card registration and read-side lookups. Balance and
// tier writes are off limits here; those belong to the ledger.
type CardUseCase struct {
	cards        repository.CardRepository
	sessions     repository.SessionRepository
	transactions repository.TransactionRepository
	tiers        *model.TierTable
	audit        *AuditRecorder
	log          *zerolog.Logger
}

func NewCardUseCase(
	cards repository.CardRepository,
	sessions repository.SessionRepository,
	transactions repository.TransactionRepository,
	tiers *model.TierTable,
	audit *AuditRecorder,
	logger *zerolog.Logger,
) *CardUseCase {
	return &CardUseCase{
		cards:        cards,
		sessions:     sessions,
		transactions: transactions,
		tiers:        tiers,
		audit:        audit,
		log:          logger,
	}
}

// Register creates a card at the lowest tier with a zero balance.
func (u *CardUseCase) Register(ctx context.Context, number, userID string, actorUserID *string) (*model.Card, error) {
	tier, err := u.tiers.Resolve(0)
	if err != nil {
		return nil, err
	}
	card, err := model.NewCard("", number, userID, tier.ID)
	if err != nil {
		return nil, err
	}
	if err := u.cards.Save(ctx, repository.NoTX, card); err != nil {
		return nil, err
	}

	entity := "card"
	u.audit.Record(actorUserID, "card.register", "card "+card.Number, &entity, &card.ID)
	return card, nil
}

func (u *CardUseCase) Get(ctx context.Context, id string) (*model.Card, error) {
	return u.cards.FindByID(ctx, repository.NoTX, id)
}

func (u *CardUseCase) GetByNumber(ctx context.Context, number string) (*model.Card, error) {
	return u.cards.FindByNumber(ctx, repository.NoTX, number)
}

func (u *CardUseCase) Transactions(ctx context.Context, cardID string, limit int) ([]*model.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.transactions.ListByCard(ctx, repository.NoTX, cardID, limit)
}

func (u *CardUseCase) Sessions(ctx context.Context, cardID string, limit int) ([]*model.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.sessions.ListByCard(ctx, repository.NoTX, cardID, limit)
}

// Tier reports the card's derived tier. It is always recomputed from the
// balance, never read back from a stored tier id.
func (u *CardUseCase) Tier(card *model.Card) (model.Tier, error) {
	return u.tiers.Resolve(card.Points)
}
