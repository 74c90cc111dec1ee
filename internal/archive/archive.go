// Package archive persists message events so conversations survive process
// restarts and can be inspected offline.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/models"
)

var ErrMessageNotFound = errors.New("archived message not found")

// ArchivedMessage is the stored projection of a message event.
type ArchivedMessage struct {
	ItemID   string `db:"item_id" json:"item_id"`
	ThreadID string `db:"thread_id" json:"thread_id"`
	UserID   int64  `db:"user_id" json:"user_id"`
	ItemType string `db:"item_type" json:"item_type"`
	Text     string `db:"text" json:"text"`
	SentAt   int64  `db:"sent_at" json:"sent_at"`
	Deleted  bool   `db:"deleted" json:"deleted"`
}

// Archive is a sqlx-backed sink for message events.
type Archive struct {
	db *sqlx.DB
}

// New constructs an Archive.
func New(database *sqlx.DB) *Archive {
	return &Archive{db: database}
}

// Bind subscribes the archive to message events. Persistence failures are
// logged, never surfaced to the engine: the archive must not disturb the
// reconciliation loop.
func (a *Archive) Bind(emitter *events.Emitter) {
	emitter.On(events.MessageCreate, func(payload any) {
		p, ok := payload.(events.MessagePayload)
		if !ok || p.Message == nil {
			return
		}
		if err := a.SaveMessage(context.Background(), p.Message); err != nil {
			log.Printf("archive save failed item_id=%s: %v", p.Message.ItemID, err)
		}
	})
	emitter.On(events.MessageDelete, func(payload any) {
		p, ok := payload.(events.MessagePayload)
		if !ok || p.Message == nil {
			return
		}
		if err := a.MarkDeleted(context.Background(), p.Message.ItemID); err != nil {
			log.Printf("archive delete failed item_id=%s: %v", p.Message.ItemID, err)
		}
	})
}

// SaveMessage upserts the message row.
func (a *Archive) SaveMessage(ctx context.Context, m *models.Message) error {
	_, err := a.db.ExecContext(ctx, `INSERT INTO archived_messages (item_id, thread_id, user_id, item_type, text, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (item_id) DO UPDATE SET text = EXCLUDED.text, item_type = EXCLUDED.item_type, sent_at = EXCLUDED.sent_at`,
		m.ItemID, m.ThreadID, m.UserID, m.ItemType, m.Text, m.Timestamp)
	return err
}

// MarkDeleted flags the message row deleted, keeping the content.
func (a *Archive) MarkDeleted(ctx context.Context, itemID string) error {
	res, err := a.db.ExecContext(ctx, `UPDATE archived_messages SET deleted = TRUE WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Recent returns the newest archived messages of a thread.
func (a *Archive) Recent(ctx context.Context, threadID string, limit int) ([]ArchivedMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []ArchivedMessage
	err := a.db.SelectContext(ctx, &msgs, `SELECT item_id, thread_id, user_id, item_type, text, sent_at, deleted
        FROM archived_messages WHERE thread_id = $1 ORDER BY sent_at DESC LIMIT $2`, threadID, limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return msgs, err
}
