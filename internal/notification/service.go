package notification

import (
	"context"

	"backend-xclone/internal/db"
)

// Rows are appended by the user and post services inside their toggle
// transactions; this service only reads and purges the inbox.
type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// ListFor returns every notification addressed to the account in insertion
// order and, as part of the same read, marks them all read. The returned
// read flags reflect the state before the mark.
func (s *Service) ListFor(ctx context.Context, accountID string) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT n.id, n.type, n.read, n.created_at, u.id, u.username, u.profile_img
		FROM notifications n JOIN users u ON u.id = n.from_id
		WHERE n.to_id=$1
		ORDER BY n.created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Notification{}
	for rows.Next() {
		n := Notification{To: accountID}
		if err := rows.Scan(&n.ID, &n.Type, &n.Read, &n.CreatedAt,
			&n.From.ID, &n.From.Username, &n.From.ProfileImg); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE notifications SET read=true WHERE to_id=$1
	`, accountID); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteAllFor irreversibly removes every notification addressed to the
// account.
func (s *Service) DeleteAllFor(ctx context.Context, accountID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE to_id=$1`, accountID)
	return err
}
