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

// AddPersonInput contains parameters for the AddPerson operation.
type AddPersonInput struct {
	Name       string
	Role       string
	Team       string
	Importance string
	Cadence    string
	Channels   []string
	Style      string
}

// AddPersonOutput contains the result of the AddPerson operation.
type AddPersonOutput struct {
	Person *record.Person `json:"person"`
}

// AddPerson creates a person record directly, bypassing detection. Used
// for people the user already knows matter.
func AddPerson(ctx context.Context, store *db.Store, cfg *config.Config, input AddPersonInput) (*AddPersonOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	key := record.StableKey(name)
	if key == "" {
		return nil, errors.NewInvalidRequest("name must contain letters or digits")
	}

	importance := record.Importance(input.Importance)
	if input.Importance == "" {
		importance = record.ImportanceMedium
	} else if !record.ValidImportance(importance) {
		return nil, errors.NewInvalidRequest("unknown importance: " + input.Importance)
	}

	cadence := record.Cadence(input.Cadence)
	if input.Cadence == "" {
		cadence = record.DefaultCadence(importance)
	} else if !record.ValidCadence(cadence) {
		return nil, errors.NewInvalidRequest("unknown cadence: " + input.Cadence)
	}

	now := time.Now().Unix()
	p := &record.Person{
		Key:        key,
		Name:       name,
		Importance: importance,
		Cadence:    cadence,
		Channels:   input.Channels,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if role := strings.TrimSpace(input.Role); role != "" {
		p.Role = &role
	}
	if team := strings.TrimSpace(input.Team); team != "" {
		p.Team = &team
	}
	if style := strings.TrimSpace(input.Style); style != "" {
		p.Style = &style
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	if err := store.InsertPerson(sctx, p); err != nil {
		return nil, err
	}
	return &AddPersonOutput{Person: p}, nil
}

// GetPersonInput contains parameters for the GetPerson operation.
type GetPersonInput struct {
	// Key accepts either the stable key or a display name.
	Key string
}

// GetPersonOutput contains the result of the GetPerson operation.
type GetPersonOutput struct {
	Person *record.Person `json:"person"`
}

// GetPerson retrieves one person record.
func GetPerson(ctx context.Context, store *db.Store, cfg *config.Config, input GetPersonInput) (*GetPersonOutput, error) {
	key := record.StableKey(input.Key)
	if key == "" {
		return nil, errors.NewInvalidRequest("key is required")
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	p, err := store.GetPerson(sctx, key)
	if err != nil {
		return nil, err
	}
	return &GetPersonOutput{Person: p}, nil
}

// ListPeopleOutput contains the result of the ListPeople operation.
type ListPeopleOutput struct {
	People []record.Person `json:"people"`
	Count  int             `json:"count"`
}

// ListPeople returns every person record ordered by key.
func ListPeople(ctx context.Context, store *db.Store, cfg *config.Config) (*ListPeopleOutput, error) {
	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	people, err := store.ListPeople(sctx)
	if err != nil {
		return nil, err
	}
	return &ListPeopleOutput{People: people, Count: len(people)}, nil
}
