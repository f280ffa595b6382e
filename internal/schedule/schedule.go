// Package schedule derives engagement recommendations from interaction
// history. Recommendations are disposable output: every generation pass
// expires the previous pending set and rebuilds from current state, so a
// run is idempotent for a fixed clock.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// Store is the storage capability the scheduler needs.
type Store interface {
	ListPeople(ctx context.Context) ([]record.Person, error)
	LatestInteraction(ctx context.Context, personKey string) (*record.Interaction, error)
	ActiveInterestLinks(ctx context.Context, personKey string) ([]record.InterestLink, error)
	ExpirePending(ctx context.Context) (int, error)
	InsertRecommendation(ctx context.Context, r *record.Recommendation) error
}

// Report summarizes one generation pass. SkippedPeople counts people whose
// recommendations could not be computed or stored; their failures are
// logged, never fatal to the pass.
type Report struct {
	People        int `json:"people"`
	Expired       int `json:"expired"`
	Created       int `json:"created"`
	SkippedPeople int `json:"skipped_people"`
}

// Scheduler computes engagement recommendations against configured cadence
// thresholds.
type Scheduler struct {
	store Store
	cfg   *config.Config

	// Now is injected for reproducible output in tests.
	Now func() time.Time
}

// New creates a Scheduler over the given store.
func New(store Store, cfg *config.Config) *Scheduler {
	return &Scheduler{store: store, cfg: cfg, Now: time.Now}
}

// Generate expires the previous pending set, then walks every person and
// writes fresh recommendations. A failure for one person skips that person
// only.
func (s *Scheduler) Generate(ctx context.Context) (*Report, error) {
	expired, err := s.store.ExpirePending(ctx)
	if err != nil {
		return nil, errors.NewStorageFailed("recommendations", "expire", err)
	}

	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, errors.NewStorageFailed("people", "list", err)
	}

	report := &Report{People: len(people), Expired: expired}
	now := s.Now()

	for i := range people {
		recs, err := s.forPerson(ctx, &people[i], now)
		if err != nil {
			log.Printf("schedule: skipping %s: %v", people[i].Key, err)
			report.SkippedPeople++
			continue
		}
		stored := 0
		var storeErr error
		for _, rec := range recs {
			if storeErr = s.store.InsertRecommendation(ctx, rec); storeErr != nil {
				log.Printf("schedule: skipping %s: %v",
					people[i].Key, errors.NewStorageFailed(people[i].Key, "recommend", storeErr))
				break
			}
			stored++
		}
		if storeErr != nil {
			report.SkippedPeople++
		}
		report.Created += stored
	}

	return report, nil
}

// forPerson computes the recommendations one person should receive at the
// given instant.
func (s *Scheduler) forPerson(ctx context.Context, p *record.Person, now time.Time) ([]*record.Recommendation, error) {
	latest, err := s.store.LatestInteraction(ctx, p.Key)
	if err != nil {
		return nil, err
	}

	expiresAt := now.AddDate(0, 0, s.cfg.RecommendationTTLDays).Unix()

	// Never interacted: an initial contact terminates the evaluation for
	// this person regardless of interest links.
	if latest == nil {
		rec, err := s.newRecommendation(p, record.RecInitialContact,
			initialContactUrgency(p.Importance),
			fmt.Sprintf("no interaction on record with %s", p.Name),
			0.9, now.Unix(), expiresAt)
		if err != nil {
			return nil, err
		}
		return []*record.Recommendation{rec}, nil
	}

	var recs []*record.Recommendation

	daysSince := int(now.Sub(time.Unix(latest.OccurredAt, 0)).Hours() / 24)
	threshold := s.cfg.ThresholdDays(p.Cadence)
	if threshold > 0 && daysSince > threshold {
		ratio := float64(daysSince) / float64(threshold)
		confidence := min(0.9, 0.5+0.4*min(ratio, 1.0))
		rec, err := s.newRecommendation(p, record.RecOverdueCheckIn,
			overdueUrgency(p.Importance, ratio),
			fmt.Sprintf("last interaction %d days ago against a %s cadence (threshold %d days)",
				daysSince, p.Cadence, threshold),
			confidence, now.Unix(), expiresAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	links, err := s.store.ActiveInterestLinks(ctx, p.Key)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if !projectUpdateDue(l) {
			continue
		}
		rec, err := s.newRecommendation(p, record.RecProjectUpdate,
			record.UrgencyMedium,
			fmt.Sprintf("%s expects %s updates on %s", p.Name, l.RequiredCadence, l.Initiative),
			0.7, now.Unix(), expiresAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

func (s *Scheduler) newRecommendation(p *record.Person, typ record.RecommendationType,
	urgency record.Urgency, reason string, confidence float64, createdAt, expiresAt int64) (*record.Recommendation, error) {

	id, err := record.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &record.Recommendation{
		ID:         id,
		PersonKey:  p.Key,
		Type:       typ,
		Urgency:    urgency,
		Reason:     reason,
		Approach:   approachFor(p),
		Confidence: confidence,
		Status:     record.RecPending,
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
	}, nil
}

// initialContactUrgency keys urgency off declared importance alone: with no
// history there is no cadence ratio to consult. Only critical escalates.
func initialContactUrgency(imp record.Importance) record.Urgency {
	if imp == record.ImportanceCritical {
		return record.UrgencyHigh
	}
	return record.UrgencyMedium
}

// overdueUrgency applies the importance/overdue-ratio matrix. More important
// relationships escalate at lower ratios.
func overdueUrgency(imp record.Importance, ratio float64) record.Urgency {
	switch imp {
	case record.ImportanceCritical:
		switch {
		case ratio > 2.0:
			return record.UrgencyUrgent
		case ratio > 1.5:
			return record.UrgencyHigh
		default:
			return record.UrgencyMedium
		}
	case record.ImportanceHigh:
		switch {
		case ratio > 2.5:
			return record.UrgencyUrgent
		case ratio > 2.0:
			return record.UrgencyHigh
		default:
			return record.UrgencyMedium
		}
	default:
		switch {
		case ratio > 3.0:
			return record.UrgencyHigh
		case ratio > 2.0:
			return record.UrgencyMedium
		default:
			return record.UrgencyLow
		}
	}
}

// projectUpdateDue reports whether an interest link warrants a proactive
// project update: active, held at critical or high level, with a weekly or
// biweekly required cadence.
func projectUpdateDue(l record.InterestLink) bool {
	if !l.Active {
		return false
	}
	if l.Level != record.ImportanceCritical && l.Level != record.ImportanceHigh {
		return false
	}
	return l.RequiredCadence == record.CadenceWeekly || l.RequiredCadence == record.CadenceBiweekly
}

// approachFor suggests how to reach out, from the person's recorded
// channels and style.
func approachFor(p *record.Person) string {
	var b strings.Builder
	if len(p.Channels) > 0 {
		fmt.Fprintf(&b, "reach out via %s", p.Channels[0])
	} else {
		b.WriteString("schedule time directly")
	}
	if p.Style != nil && *p.Style != "" {
		fmt.Fprintf(&b, "; keep it %s", *p.Style)
	}
	return b.String()
}
