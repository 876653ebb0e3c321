package outbox

import (
	"context"
	"encoding/json"
	"time"

	"bookstore/util/database"
)

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

type Repo interface {
	Insert(ctx context.Context, q database.Querier, rec *Record) error
	MarkSent(ctx context.Context, id int64) error
	FetchPending(ctx context.Context, limit int) ([]Record, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// Insert runs on the caller's querier so the event commits with the order.
func (r *repo) Insert(ctx context.Context, q database.Querier, rec *Record) error {
	return q.QueryRow(ctx,
		`INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		rec.EventID, rec.Topic, rec.Key, []byte(rec.Payload),
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *repo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE outbox SET sent_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repo) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, event_id, topic, key, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
