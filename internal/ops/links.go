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

// AddLinkInput contains parameters for the AddLink operation.
type AddLinkInput struct {
	PersonKey       string
	Initiative      string
	Level           string
	RequiredCadence string
}

// AddLinkOutput contains the result of the AddLink operation.
type AddLinkOutput struct {
	Link *record.InterestLink `json:"link"`
}

// AddLink ties a person to an initiative they care about.
func AddLink(ctx context.Context, store *db.Store, cfg *config.Config, input AddLinkInput) (*AddLinkOutput, error) {
	key := record.StableKey(input.PersonKey)
	if key == "" {
		return nil, errors.NewInvalidRequest("person_key is required")
	}
	initiative := strings.TrimSpace(input.Initiative)
	if initiative == "" {
		return nil, errors.NewInvalidRequest("initiative is required")
	}
	level := record.Importance(input.Level)
	if !record.ValidImportance(level) {
		return nil, errors.NewInvalidRequest("unknown interest level: " + input.Level)
	}
	cadence := record.Cadence(input.RequiredCadence)
	if !record.ValidCadence(cadence) {
		return nil, errors.NewInvalidRequest("unknown cadence: " + input.RequiredCadence)
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()

	if _, err := store.GetPerson(sctx, key); err != nil {
		return nil, err
	}

	id, err := record.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	link := &record.InterestLink{
		ID:              id,
		PersonKey:       key,
		Initiative:      initiative,
		Level:           level,
		RequiredCadence: cadence,
		Active:          true,
		CreatedAt:       time.Now().Unix(),
	}
	if err := store.InsertInterestLink(sctx, link); err != nil {
		return nil, err
	}
	return &AddLinkOutput{Link: link}, nil
}

// ListLinksInput contains parameters for the ListLinks operation.
type ListLinksInput struct {
	PersonKey string
}

// ListLinksOutput contains the result of the ListLinks operation.
type ListLinksOutput struct {
	Links []record.InterestLink `json:"links"`
	Count int                   `json:"count"`
}

// ListLinks returns a person's active interest links.
func ListLinks(ctx context.Context, store *db.Store, cfg *config.Config, input ListLinksInput) (*ListLinksOutput, error) {
	key := record.StableKey(input.PersonKey)
	if key == "" {
		return nil, errors.NewInvalidRequest("person_key is required")
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	links, err := store.ActiveInterestLinks(sctx, key)
	if err != nil {
		return nil, err
	}
	return &ListLinksOutput{Links: links, Count: len(links)}, nil
}
