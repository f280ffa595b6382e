package ops

import (
	"context"
	"strings"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// interactionTypes lists the accepted interaction types.
var interactionTypes = map[string]bool{
	"meeting": true,
	"chat":    true,
	"email":   true,
	"call":    true,
	"ad_hoc":  true,
}

// RecordInteractionInput contains parameters for the RecordInteraction
// operation.
type RecordInteractionInput struct {
	PersonKey string

	// OccurredAt is a Unix timestamp; zero means now.
	OccurredAt int64

	Type    string
	Quality int // 1-5, 0 = unrated
	Topics  []string
}

// RecordInteractionOutput contains the result of the RecordInteraction
// operation.
type RecordInteractionOutput struct {
	ID              string `json:"id"`
	PersonKey       string `json:"person_key"`
	OccurredAt      int64  `json:"occurred_at"`
	SupersededCount int    `json:"superseded_count"`
}

// RecordInteraction logs an interaction with a known person. Any pending
// recommendations for that person are superseded in the same transaction.
func RecordInteraction(ctx context.Context, store *db.Store, cfg *config.Config, input RecordInteractionInput) (*RecordInteractionOutput, error) {
	key := strings.TrimSpace(input.PersonKey)
	if key == "" {
		return nil, errors.NewInvalidRequest("person_key is required")
	}
	typ := strings.TrimSpace(input.Type)
	if typ == "" {
		typ = "ad_hoc"
	}
	if !interactionTypes[typ] {
		return nil, errors.NewInvalidRequest("unknown interaction type: " + typ)
	}
	if input.Quality < 0 || input.Quality > 5 {
		return nil, errors.NewInvalidRequest("quality must be between 1 and 5")
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()

	// The person must already be a record; interactions never create one.
	if _, err := store.GetPerson(sctx, key); err != nil {
		return nil, err
	}

	id, err := record.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()
	occurred := input.OccurredAt
	if occurred == 0 {
		occurred = now
	}

	ev := &record.Interaction{
		ID:         id,
		PersonKey:  key,
		OccurredAt: occurred,
		Type:       typ,
		Quality:    input.Quality,
		Topics:     input.Topics,
		CreatedAt:  now,
	}
	superseded, err := store.RecordInteraction(sctx, ev)
	if err != nil {
		return nil, err
	}

	return &RecordInteractionOutput{
		ID:              id,
		PersonKey:       key,
		OccurredAt:      occurred,
		SupersededCount: superseded,
	}, nil
}
