package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

const eventColumns = `seq, id, target, type, payload, delivered, created_at`

// NotificationRepo represents the notification event store. seq is a
// BIGSERIAL and orders the events of every target.
type NotificationRepo struct{ db *pgxpool.Pool }

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo { return &NotificationRepo{db: db} }

// Append - stores an undelivered event and returns it with its seq.
func (r *NotificationRepo) Append(ctx context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error) {
	if ev.ID == uuid.Nil || ev.Type == "" || ev.Target.Key == "" {
		return domain.NotificationEvent{}, apperr.ErrInvalid
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO notification_events (id, target, type, payload, delivered, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
		RETURNING `+eventColumns,
		pgUUID(ev.ID), ev.Target.String(), string(ev.Type), []byte(ev.Payload), ev.CreatedAt,
	)
	stored, err := scanEvent(row)
	if err != nil {
		if IsDuplicate(err) {
			return domain.NotificationEvent{}, apperr.ErrConflict
		}
		return domain.NotificationEvent{}, unavailable("append event", err)
	}
	return stored, nil
}

// Get - returns event by its ID.
func (r *NotificationRepo) Get(ctx context.Context, id uuid.UUID) (domain.NotificationEvent, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM notification_events WHERE id = $1`, pgUUID(id))
	ev, err := scanEvent(row)
	if err != nil {
		if IsNotFound(err) {
			return domain.NotificationEvent{}, apperr.ErrNotFound
		}
		return domain.NotificationEvent{}, unavailable(fmt.Sprintf("get event %s", id), err)
	}
	return ev, nil
}

// ListUndelivered - returns undelivered events of the target by seq. A
// non-positive limit returns all of them.
func (r *NotificationRepo) ListUndelivered(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM notification_events WHERE target = $1 AND NOT delivered ORDER BY seq`
	args := []any{target.String()}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, unavailable("list events", err)
	}
	defer rows.Close()

	out := make([]domain.NotificationEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, unavailable("scan event", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read events", err)
	}
	return out, nil
}

// MarkDelivered - flags events as delivered and returns how many exist.
func (r *NotificationRepo) MarkDelivered(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	pgIDs := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		pgIDs[i] = pgUUID(id)
	}
	ct, err := r.db.Exec(ctx, `UPDATE notification_events SET delivered = true WHERE id = ANY($1)`, pgIDs)
	if err != nil {
		return 0, unavailable("mark events delivered", err)
	}
	return ct.RowsAffected(), nil
}

func scanEvent(row pgx.Row) (domain.NotificationEvent, error) {
	var (
		ev      domain.NotificationEvent
		id      pgtype.UUID
		target  string
		typ     string
		payload []byte
	)
	if err := row.Scan(&ev.Seq, &id, &target, &typ, &payload, &ev.Delivered, &ev.CreatedAt); err != nil {
		return domain.NotificationEvent{}, err
	}
	aud, err := domain.ParseAudience(target)
	if err != nil {
		return domain.NotificationEvent{}, err
	}
	ev.ID = uuid.UUID(id.Bytes)
	ev.Target = aud
	ev.Type = domain.EventType(typ)
	ev.Payload = payload
	ev.CreatedAt = ev.CreatedAt.UTC()
	return ev, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
