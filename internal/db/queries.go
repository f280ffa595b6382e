package db

import (
	"context"
	"database/sql"

	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// --- Interactions ---

// RecordInteraction appends an interaction event and marks the person's
// pending recommendations completed in the same transaction: a fresh
// interaction supersedes whatever the scheduler previously suggested.
// Returns the number of recommendations superseded.
func (s *Store) RecordInteraction(ctx context.Context, ev *record.Interaction) (int, error) {
	topics, err := toJSONList(ev.Topics)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interactions (id, person_key, occurred_at, type, quality, topics_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.PersonKey, ev.OccurredAt, ev.Type, ev.Quality, topics, ev.CreatedAt)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE recommendations SET status = ?
		WHERE person_key = ? AND status = ?
	`, string(record.RecCompleted), ev.PersonKey, string(record.RecPending))
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	superseded, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(superseded), nil
}

// LatestInteraction returns the most recent interaction for a person, or
// nil when none has been recorded.
func (s *Store) LatestInteraction(ctx context.Context, personKey string) (*record.Interaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_key, occurred_at, type, quality, topics_json, created_at
		FROM interactions
		WHERE person_key = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1
	`, personKey)

	var ev record.Interaction
	var quality sql.NullInt64
	var topics sql.NullString
	err := row.Scan(&ev.ID, &ev.PersonKey, &ev.OccurredAt, &ev.Type, &quality, &topics, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if quality.Valid {
		ev.Quality = int(quality.Int64)
	}
	if ev.Topics, err = fromJSONList(topics); err != nil {
		return nil, err
	}
	return &ev, nil
}

// --- Recommendations ---

// InsertRecommendation writes one scheduler-produced recommendation.
func (s *Store) InsertRecommendation(ctx context.Context, r *record.Recommendation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, person_key, type, urgency, reason, approach, confidence, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.PersonKey, string(r.Type), string(r.Urgency), r.Reason,
		r.Approach, r.Confidence, string(r.Status), r.CreatedAt, r.ExpiresAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ExpirePending marks every pending recommendation expired. The scheduler
// calls this before a full regeneration pass: its output is disposable and
// always replaced wholesale.
func (s *Store) ExpirePending(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recommendations SET status = ? WHERE status = ?
	`, string(record.RecExpired), string(record.RecPending))
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// ListRecommendations returns recommendations, optionally filtered by
// status, most urgent first.
func (s *Store) ListRecommendations(ctx context.Context, status record.RecommendationStatus) ([]record.Recommendation, error) {
	query := `
		SELECT id, person_key, type, urgency, reason, approach, confidence, status, created_at, expires_at
		FROM recommendations`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += `
		ORDER BY CASE urgency
			WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3
		END, person_key, type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var recs []record.Recommendation
	for rows.Next() {
		var r record.Recommendation
		var typ, urgency, st string
		var approach sql.NullString
		if err := rows.Scan(&r.ID, &r.PersonKey, &typ, &urgency, &r.Reason,
			&approach, &r.Confidence, &st, &r.CreatedAt, &r.ExpiresAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.Type = record.RecommendationType(typ)
		r.Urgency = record.Urgency(urgency)
		r.Status = record.RecommendationStatus(st)
		if approach.Valid {
			r.Approach = approach.String
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return recs, nil
}

// --- Interest links ---

// InsertInterestLink writes a person-to-initiative interest link.
func (s *Store) InsertInterestLink(ctx context.Context, l *record.InterestLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interest_links (id, person_key, initiative, level, required_cadence, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.PersonKey, l.Initiative, string(l.Level), string(l.RequiredCadence),
		boolToInt(l.Active), l.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ActiveInterestLinks returns a person's active interest links.
func (s *Store) ActiveInterestLinks(ctx context.Context, personKey string) ([]record.InterestLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_key, initiative, level, required_cadence, active, created_at
		FROM interest_links
		WHERE person_key = ? AND active = 1
		ORDER BY initiative
	`, personKey)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var links []record.InterestLink
	for rows.Next() {
		var l record.InterestLink
		var level, cadence string
		var active int
		if err := rows.Scan(&l.ID, &l.PersonKey, &l.Initiative, &level, &cadence, &active, &l.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		l.Level = record.Importance(level)
		l.RequiredCadence = record.Cadence(cadence)
		l.Active = active != 0
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return links, nil
}

// --- Review queue ---

// EnqueueReview writes a needs-review candidate to the review queue.
func (s *Store) EnqueueReview(ctx context.Context, e *record.ReviewEntry) error {
	questions, err := toJSONList(e.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_queue (id, kind, candidate_json, questions_json, status, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`, e.ID, e.Kind, e.CandidateJSON, questions, string(e.Status), e.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetReview retrieves a review entry by id.
func (s *Store) GetReview(ctx context.Context, id string) (*record.ReviewEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, candidate_json, questions_json, status, created_at, resolved_at
		FROM review_queue WHERE id = ?
	`, id)

	e, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("review entry", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ListReviews returns review entries, optionally filtered by status,
// oldest first.
func (s *Store) ListReviews(ctx context.Context, status record.QueueStatus) ([]record.ReviewEntry, error) {
	query := `
		SELECT id, kind, candidate_json, questions_json, status, created_at, resolved_at
		FROM review_queue`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []record.ReviewEntry
	for rows.Next() {
		e, err := scanReview(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

func scanReview(row rowScanner) (*record.ReviewEntry, error) {
	var e record.ReviewEntry
	var questions sql.NullString
	var status string
	var resolvedAt sql.NullInt64

	err := row.Scan(&e.ID, &e.Kind, &e.CandidateJSON, &questions, &status, &e.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	e.Status = record.QueueStatus(status)
	e.ResolvedAt = fromNullInt(resolvedAt)
	if e.Questions, err = fromJSONList(questions); err != nil {
		return nil, err
	}
	return &e, nil
}

// ResolveReview marks a pending review entry completed. Queue entries
// only ever transition through explicit human action.
func (s *Store) ResolveReview(ctx context.Context, id string, resolvedAt int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE review_queue SET status = ?, resolved_at = ?
		WHERE id = ? AND status = ?
	`, string(record.QueueCompleted), resolvedAt, id, string(record.QueuePending))
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("pending review entry", id)
	}
	return nil
}

// --- Update suggestions ---

// EnqueueUpdateSuggestion writes a diff against an existing record. The
// record itself is untouched.
func (s *Store) EnqueueUpdateSuggestion(ctx context.Context, u *record.UpdateSuggestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO update_suggestions (id, target_key, kind, field, current_value, suggested_value, confidence, status, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`, u.ID, u.TargetKey, u.Kind, u.Field, u.Current, u.Suggested,
		u.Confidence, string(u.Status), u.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListUpdateSuggestions returns suggestions for a target key (or all when
// the key is empty), optionally filtered by status.
func (s *Store) ListUpdateSuggestions(ctx context.Context, targetKey string, status record.QueueStatus) ([]record.UpdateSuggestion, error) {
	query := `
		SELECT id, target_key, kind, field, current_value, suggested_value, confidence, status, created_at, resolved_at
		FROM update_suggestions WHERE 1=1`
	var args []any
	if targetKey != "" {
		query += ` AND target_key = ?`
		args = append(args, targetKey)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []record.UpdateSuggestion
	for rows.Next() {
		var u record.UpdateSuggestion
		var current sql.NullString
		var status string
		var resolvedAt sql.NullInt64
		if err := rows.Scan(&u.ID, &u.TargetKey, &u.Kind, &u.Field, &current,
			&u.Suggested, &u.Confidence, &status, &u.CreatedAt, &resolvedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if current.Valid {
			u.Current = current.String
		}
		u.Status = record.QueueStatus(status)
		u.ResolvedAt = fromNullInt(resolvedAt)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// --- Detection log ---

// LogDetection records a discarded candidate for later analysis.
func (s *Store) LogDetection(ctx context.Context, e *record.DetectionLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detection_log (id, key, kind, confidence, disposition, reason, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Key, e.Kind, e.Confidence, e.Disposition, e.Reason, e.Source, e.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListDetectionLog returns the newest log entries up to limit.
func (s *Store) ListDetectionLog(ctx context.Context, limit int) ([]record.DetectionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, kind, confidence, disposition, reason, source, created_at
		FROM detection_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []record.DetectionLogEntry
	for rows.Next() {
		var e record.DetectionLogEntry
		var source sql.NullString
		if err := rows.Scan(&e.ID, &e.Key, &e.Kind, &e.Confidence,
			&e.Disposition, &e.Reason, &source, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if source.Valid {
			e.Source = source.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}
