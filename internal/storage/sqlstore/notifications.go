package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type notificationRow struct {
	ID            string `db:"id"`
	SenderID      string `db:"sender_id"`
	ReceiverID    string `db:"receiver_id"`
	ReceiverEmail string `db:"receiver_email"`
	Type          string `db:"notification_type"`
	Title         string `db:"title"`
	Message       string `db:"message"`
	Metadata      string `db:"metadata"`
	Read          bool   `db:"is_read"`
	CreatedAt     int64  `db:"created_at"`
}

type notificationRepo struct {
	q *queryer
}

func (r *notificationRepo) Add(ctx context.Context, n domain.Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.q.clock()
	}

	_, err := r.q.exec(ctx, `INSERT INTO notifications (id, sender_id, receiver_id, receiver_email,
			notification_type, title, message, metadata, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.SenderID, n.ReceiverID, n.ReceiverEmail, string(n.Type), n.Title, n.Message,
		encodeMap(n.Metadata), false, millis(createdAt))
	if err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return n.ID, nil
}

func (r *notificationRepo) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []notificationRow
	err := r.q.selectAll(ctx, &rows, `SELECT id, sender_id, receiver_id, receiver_email, notification_type,
			title, message, metadata, is_read, created_at
		FROM notifications WHERE receiver_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, receiverID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Notification{
			ID:            row.ID,
			SenderID:      row.SenderID,
			ReceiverID:    row.ReceiverID,
			ReceiverEmail: row.ReceiverEmail,
			Type:          domain.NotificationType(row.Type),
			Title:         row.Title,
			Message:       row.Message,
			Metadata:      decodeMap(row.Metadata),
			Read:          row.Read,
			CreatedAt:     fromMillis(row.CreatedAt),
		})
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, receiverID string) error {
	res, err := r.q.exec(ctx, `UPDATE notifications SET is_read = ? WHERE id = ? AND receiver_id = ?`,
		true, id, receiverID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
