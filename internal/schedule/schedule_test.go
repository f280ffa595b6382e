package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/record"
)

var fixedNow = time.Date(2026, 3, 27, 12, 0, 0, 0, time.UTC)

func setupScheduler(t *testing.T) (*Scheduler, *db.Store) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	sched := New(store, config.DefaultConfig())
	sched.Now = func() time.Time { return fixedNow }
	return sched, store
}

func addPerson(t *testing.T, store *db.Store, key, name string, imp record.Importance, cad record.Cadence) {
	t.Helper()
	err := store.InsertPerson(context.Background(), &record.Person{
		Key: key, Name: name, Importance: imp, Cadence: cad,
		Channels: []string{"slack"}, CreatedAt: 1, UpdatedAt: 1,
	})
	if err != nil {
		t.Fatalf("InsertPerson %s: %v", key, err)
	}
}

func addInteraction(t *testing.T, store *db.Store, personKey string, daysAgo int) {
	t.Helper()
	occurred := fixedNow.AddDate(0, 0, -daysAgo).Unix()
	_, err := store.RecordInteraction(context.Background(), &record.Interaction{
		ID: "i-" + personKey, PersonKey: personKey,
		OccurredAt: occurred, Type: "meeting", CreatedAt: occurred,
	})
	if err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}
}

func pending(t *testing.T, store *db.Store) []record.Recommendation {
	t.Helper()
	recs, err := store.ListRecommendations(context.Background(), record.RecPending)
	if err != nil {
		t.Fatalf("ListRecommendations: %v", err)
	}
	return recs
}

func TestGenerate_InitialContact(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "priyanair", "Priya Nair", record.ImportanceCritical, record.CadenceWeekly)

	report, err := sched.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("created = %d, want 1", report.Created)
	}

	recs := pending(t, store)
	if len(recs) != 1 {
		t.Fatalf("pending = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Type != record.RecInitialContact {
		t.Errorf("type = %s, want initial_contact", r.Type)
	}
	if r.Urgency != record.UrgencyHigh {
		t.Errorf("urgency = %s, want high", r.Urgency)
	}
	if r.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", r.Confidence)
	}
	wantExpiry := fixedNow.AddDate(0, 0, 7).Unix()
	if r.ExpiresAt != wantExpiry {
		t.Errorf("expires_at = %d, want %d", r.ExpiresAt, wantExpiry)
	}
}

func TestGenerate_InitialContactNonCritical(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "marcuswebb", "Marcus Webb", record.ImportanceHigh, record.CadenceBiweekly)
	addPerson(t, store, "jamiepark", "Jamie Park", record.ImportanceLow, record.CadenceQuarterly)

	if _, err := sched.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	recs := pending(t, store)
	if len(recs) != 2 {
		t.Fatalf("pending = %d, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Type != record.RecInitialContact {
			t.Errorf("%s: type = %s, want initial_contact", r.PersonKey, r.Type)
		}
		if r.Urgency != record.UrgencyMedium {
			t.Errorf("%s: urgency = %s, want medium", r.PersonKey, r.Urgency)
		}
	}
}

func TestInitialContactUrgency(t *testing.T) {
	tests := []struct {
		imp  record.Importance
		want record.Urgency
	}{
		{record.ImportanceCritical, record.UrgencyHigh},
		{record.ImportanceHigh, record.UrgencyMedium},
		{record.ImportanceMedium, record.UrgencyMedium},
		{record.ImportanceLow, record.UrgencyMedium},
	}
	for _, tt := range tests {
		if got := initialContactUrgency(tt.imp); got != tt.want {
			t.Errorf("initialContactUrgency(%s) = %s, want %s", tt.imp, got, tt.want)
		}
	}
}

func TestGenerate_InitialContactTerminates(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "priyanair", "Priya Nair", record.ImportanceCritical, record.CadenceWeekly)

	// A qualifying interest link must not add a second recommendation when
	// there is no interaction history at all.
	err := store.InsertInterestLink(context.Background(), &record.InterestLink{
		ID: "l1", PersonKey: "priyanair", Initiative: "platform migration",
		Level: record.ImportanceCritical, RequiredCadence: record.CadenceWeekly,
		Active: true, CreatedAt: 1,
	})
	if err != nil {
		t.Fatalf("InsertInterestLink: %v", err)
	}

	if _, err := sched.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	recs := pending(t, store)
	if len(recs) != 1 || recs[0].Type != record.RecInitialContact {
		t.Fatalf("pending = %+v, want a single initial_contact", recs)
	}
}

func TestGenerate_OverdueUrgent(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "priyanair", "Priya Nair", record.ImportanceCritical, record.CadenceWeekly)
	addInteraction(t, store, "priyanair", 25) // ratio 2.5 against a 10-day threshold

	if _, err := sched.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	recs := pending(t, store)
	if len(recs) != 1 {
		t.Fatalf("pending = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Type != record.RecOverdueCheckIn {
		t.Errorf("type = %s, want overdue_check_in", r.Type)
	}
	if r.Urgency != record.UrgencyUrgent {
		t.Errorf("urgency = %s, want urgent", r.Urgency)
	}
	if r.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", r.Confidence)
	}
	if r.Approach != "reach out via slack" {
		t.Errorf("approach = %q", r.Approach)
	}
}

func TestGenerate_WithinCadenceProducesNothing(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "marcuswebb", "Marcus Webb", record.ImportanceHigh, record.CadenceBiweekly)
	addInteraction(t, store, "marcuswebb", 5)

	report, err := sched.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Created != 0 {
		t.Errorf("created = %d, want 0", report.Created)
	}
}

func TestGenerate_ProjectUpdate(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "priyanair", "Priya Nair", record.ImportanceCritical, record.CadenceWeekly)
	addInteraction(t, store, "priyanair", 3) // within cadence

	links := []record.InterestLink{
		{ID: "l1", PersonKey: "priyanair", Initiative: "platform migration",
			Level: record.ImportanceCritical, RequiredCadence: record.CadenceWeekly, Active: true},
		// Wrong cadence: no update due.
		{ID: "l2", PersonKey: "priyanair", Initiative: "hiring plan",
			Level: record.ImportanceHigh, RequiredCadence: record.CadenceMonthly, Active: true},
		// Wrong level: no update due.
		{ID: "l3", PersonKey: "priyanair", Initiative: "office move",
			Level: record.ImportanceMedium, RequiredCadence: record.CadenceWeekly, Active: true},
	}
	for i := range links {
		links[i].CreatedAt = 1
		if err := store.InsertInterestLink(context.Background(), &links[i]); err != nil {
			t.Fatalf("InsertInterestLink: %v", err)
		}
	}

	if _, err := sched.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	recs := pending(t, store)
	if len(recs) != 1 {
		t.Fatalf("pending = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Type != record.RecProjectUpdate {
		t.Errorf("type = %s, want project_update", r.Type)
	}
	if r.Urgency != record.UrgencyMedium {
		t.Errorf("urgency = %s, want medium", r.Urgency)
	}
	if r.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", r.Confidence)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	sched, store := setupScheduler(t)
	addPerson(t, store, "priyanair", "Priya Nair", record.ImportanceCritical, record.CadenceWeekly)
	addPerson(t, store, "marcuswebb", "Marcus Webb", record.ImportanceLow, record.CadenceQuarterly)
	addInteraction(t, store, "priyanair", 25)

	if _, err := sched.Generate(context.Background()); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	first := pending(t, store)

	report, err := sched.Generate(context.Background())
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if report.Expired != len(first) {
		t.Errorf("expired = %d, want %d", report.Expired, len(first))
	}

	second := pending(t, store)
	if len(second) != len(first) {
		t.Fatalf("pending after rerun = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Type != second[i].Type ||
			first[i].Urgency != second[i].Urgency ||
			first[i].Reason != second[i].Reason ||
			first[i].PersonKey != second[i].PersonKey {
			t.Errorf("rerun diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestOverdueUrgency(t *testing.T) {
	tests := []struct {
		imp   record.Importance
		ratio float64
		want  record.Urgency
	}{
		{record.ImportanceCritical, 2.5, record.UrgencyUrgent},
		{record.ImportanceCritical, 1.8, record.UrgencyHigh},
		{record.ImportanceCritical, 1.2, record.UrgencyMedium},
		{record.ImportanceHigh, 2.6, record.UrgencyUrgent},
		{record.ImportanceHigh, 2.2, record.UrgencyHigh},
		{record.ImportanceHigh, 1.5, record.UrgencyMedium},
		{record.ImportanceMedium, 3.5, record.UrgencyHigh},
		{record.ImportanceMedium, 2.5, record.UrgencyMedium},
		{record.ImportanceMedium, 1.5, record.UrgencyLow},
		{record.ImportanceLow, 4.0, record.UrgencyHigh},
	}
	for _, tt := range tests {
		if got := overdueUrgency(tt.imp, tt.ratio); got != tt.want {
			t.Errorf("overdueUrgency(%s, %.1f) = %s, want %s", tt.imp, tt.ratio, got, tt.want)
		}
	}
}
