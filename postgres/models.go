package postgres

import (
	"time"

	"github.com/livedeck/reactions-backend/api"
)

// A presentation represents a registered slide deck in the database.
type presentation struct {
	Slug      string    `bun:",pk,notnull"`
	Title     string    `bun:",notnull"`
	DeckID    string    `bun:"deck_id,notnull"`
	CreatedAt time.Time `bun:",nullzero,default:now()"`
}

func (p presentation) APIPresentation() api.Presentation {
	return api.Presentation{
		Slug:      p.Slug,
		Title:     p.Title,
		DeckID:    p.DeckID,
		CreatedAt: p.CreatedAt,
	}
}
