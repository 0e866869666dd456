package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one append-only record of a mutating action. ActorUserID is
// nil for actions the system performs on its own (sweeper, seed).
type AuditLog struct {
	ID          string
	ActorUserID *string
	Action      string
	Details     string
	Entity      *string
	EntityID    *string
	CreatedAt   time.Time
}

func NewAuditLog(actorUserID *string, action, details string, entity, entityID *string) *AuditLog {
	return &AuditLog{
		ID:          uuid.NewString(),
		ActorUserID: actorUserID,
		Action:      action,
		Details:     details,
		Entity:      entity,
		EntityID:    entityID,
		CreatedAt:   time.Now(),
	}
}
