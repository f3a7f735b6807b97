package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Outbox event lifecycle: pending -> processed, or pending -> failed (retried
// with backoff) -> dead_letter once MaxRetryCount is reached.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusProcessed  = "processed"
	OutboxStatusFailed     = "failed"
	OutboxStatusDeadLetter = "dead_letter"

	MaxRetryCount = 5

	// DefaultStream receives product events unless an event names its own.
	DefaultStream = "stream:storefront_products"

	maxRetryBackoff = 5 * time.Minute
)

var ErrIncompleteEvent = errors.New("outbox event requires aggregate type, aggregate id and event type")

type OutboxEvent struct {
	ID            uuid.UUID       `db:"id"`
	AggregateType string          `db:"aggregate_type"`
	AggregateID   string          `db:"aggregate_id"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	TargetStream  string          `db:"target_stream"`
	Status        string          `db:"status"`
	RetryCount    int             `db:"retry_count"`
	ErrorMessage  *string         `db:"error_message"`
	CreatedAt     time.Time       `db:"created_at"`
	ProcessedAt   *time.Time      `db:"processed_at"`
	NextRetryAt   *time.Time      `db:"next_retry_at"`
}

// NewProductEvent builds an event for a product aggregate with payload
// encoded as JSON.
func NewProductEvent(eventType string, productID int64, payload any) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &OutboxEvent{
		AggregateType: AggregateProduct,
		AggregateID:   strconv.FormatInt(productID, 10),
		EventType:     eventType,
		Payload:       data,
	}, nil
}

// prepare validates the event and fills id, status, stream and timestamps.
func (e *OutboxEvent) prepare(now time.Time) error {
	if e.AggregateType == "" || e.AggregateID == "" || e.EventType == "" {
		return ErrIncompleteEvent
	}
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		e.Payload = json.RawMessage(`{}`)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = OutboxStatusPending
	}
	if e.TargetStream == "" {
		e.TargetStream = DefaultStream
	}
	e.CreatedAt = now
	if e.NextRetryAt == nil {
		e.NextRetryAt = &now
	}
	return nil
}

const outboxColumns = `id, aggregate_type, aggregate_id, event_type,
	payload, target_stream, status, retry_count,
	error_message, created_at, processed_at, next_retry_at`

func scanOutboxEvent(row pgx.Row) (*OutboxEvent, error) {
	e := &OutboxEvent{}
	err := row.Scan(
		&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType,
		&e.Payload, &e.TargetStream, &e.Status, &e.RetryCount,
		&e.ErrorMessage, &e.CreatedAt, &e.ProcessedAt, &e.NextRetryAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// OutboxRepository stores product events in the same transaction as the
// product rows they describe.
type OutboxRepository struct {
	db *DB
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, event *OutboxEvent) error {
	if err := event.prepare(time.Now()); err != nil {
		return err
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_event (
			id, aggregate_type, aggregate_id, event_type,
			payload, target_stream, status, retry_count,
			created_at, next_retry_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.AggregateType, event.AggregateID, event.EventType,
		event.Payload, event.TargetStream, event.Status, event.RetryCount,
		event.CreatedAt, event.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// GetPending returns pending and retry-due events, oldest first.
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_event
		WHERE status IN ($1, $2) AND next_retry_at <= $3
		ORDER BY created_at ASC
		LIMIT $4`,
		OutboxStatusPending, OutboxStatusFailed, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		event, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.pool.Exec(ctx,
		`UPDATE outbox_event SET status = $1, processed_at = $2 WHERE id = $3`,
		OutboxStatusProcessed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkFailed records processErr and schedules the next attempt, moving the
// event to dead_letter once MaxRetryCount attempts have failed.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, processErr error) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var retryCount int
		err := tx.QueryRow(ctx,
			`SELECT retry_count FROM outbox_event WHERE id = $1 FOR UPDATE`, id).Scan(&retryCount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("outbox event %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to get retry count: %w", err)
		}

		retryCount++
		status := OutboxStatusFailed
		if retryCount >= MaxRetryCount {
			status = OutboxStatusDeadLetter
		}

		_, err = tx.Exec(ctx, `
			UPDATE outbox_event
			SET status = $1, retry_count = $2, error_message = $3, next_retry_at = $4
			WHERE id = $5`,
			status, retryCount, processErr.Error(), time.Now().Add(retryDelay(retryCount)), id)
		if err != nil {
			return fmt.Errorf("failed to mark event as failed: %w", err)
		}
		return nil
	})
}

// RequeueDeadLetters returns every dead-lettered event to pending with a
// fresh retry budget.
func (r *OutboxRepository) RequeueDeadLetters(ctx context.Context) (int64, error) {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE outbox_event
		SET status = $1, retry_count = 0, next_retry_at = $2
		WHERE status = $3`,
		OutboxStatusPending, time.Now(), OutboxStatusDeadLetter)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue dead letters: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeProcessed deletes processed events older than retention.
func (r *OutboxRepository) PurgeProcessed(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.db.pool.Exec(ctx,
		`DELETE FROM outbox_event WHERE status = $1 AND processed_at < $2`,
		OutboxStatusProcessed, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to purge processed events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Backlog counts events still to publish (pending or awaiting retry) and
// dead-lettered events.
func (r *OutboxRepository) Backlog(ctx context.Context) (pending, deadLetter int64, err error) {
	err = r.db.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ($1, $2)),
			COUNT(*) FILTER (WHERE status = $3)
		FROM outbox_event`,
		OutboxStatusPending, OutboxStatusFailed, OutboxStatusDeadLetter,
	).Scan(&pending, &deadLetter)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count outbox backlog: %w", err)
	}
	return pending, deadLetter, nil
}

// retryDelay doubles per attempt (2s, 4s, 8s, ...) up to five minutes.
func retryDelay(retryCount int) time.Duration {
	if retryCount >= 9 {
		return maxRetryBackoff
	}
	return min(time.Duration(1<<retryCount)*time.Second, maxRetryBackoff)
}
