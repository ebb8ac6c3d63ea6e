package user

import (
	"context"
	"errors"

	"backend-xclone/internal/db"
	"backend-xclone/internal/media"
	"backend-xclone/internal/shared/apperr"
	"backend-xclone/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const accountColumns = `id, username, email, full_name, bio, link, profile_img, cover_img, created_at, updated_at`

const suggestedLimit = 4

type Service struct {
	db    db.Querier
	media media.Store
	hub   *stream.Hub
}

func NewService(q db.Querier, store media.Store, hub *stream.Hub) *Service {
	return &Service{db: q, media: store, hub: hub}
}

func (s *Service) Profile(ctx context.Context, username string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE username=$1`, username)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return Account{}, err
	}
	if err := s.loadEdges(ctx, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// FollowToggle flips the follow edge between viewer and target. It reports
// whether the viewer now follows the target. The edge change and the follow
// notification commit in one transaction, so the graph never shows a
// half-applied transition.
func (s *Service) FollowToggle(ctx context.Context, viewerID, targetID string) (bool, error) {
	if viewerID == targetID {
		return false, apperr.New(apperr.ErrInvalidInput, "you cannot follow or unfollow yourself")
	}

	var present int
	if err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM users WHERE id IN ($1,$2)
	`, viewerID, targetID).Scan(&present); err != nil {
		return false, err
	}
	if present < 2 {
		return false, apperr.New(apperr.ErrNotFound, "user not found")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM user_follows WHERE follower_id=$1 AND following_id=$2
	`, viewerID, targetID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, viewerID, targetID); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO notifications (id, from_id, to_id, type, read)
		VALUES ($1,$2,$3,'follow',false)
	`, uuid.NewString(), viewerID, targetID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	if s.hub != nil {
		s.hub.NotifyEvent(stream.Event{Type: "follow", From: viewerID, To: targetID})
	}
	return true, nil
}

// Suggested samples a pool of random accounts and keeps the ones the viewer
// does not follow yet, capped at four.
func (s *Service) Suggested(ctx context.Context, viewerID string) ([]Account, error) {
	following, err := stringColumn(ctx, s.db, `
		SELECT following_id FROM user_follows WHERE follower_id=$1
	`, viewerID)
	if err != nil {
		return nil, err
	}
	followed := map[string]struct{}{}
	for _, id := range following {
		followed[id] = struct{}{}
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM users WHERE id <> $1
		ORDER BY random() LIMIT 10
	`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggested := []Account{}
	for rows.Next() {
		acct, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := followed[acct.ID]; ok {
			continue
		}
		if len(suggested) < suggestedLimit {
			suggested = append(suggested, acct)
		}
	}
	return suggested, rows.Err()
}

func (s *Service) Update(ctx context.Context, accountID string, req UpdateRequest) (Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT username, email, full_name, bio, link, profile_img, cover_img, password_hash
		FROM users WHERE id=$1
	`, accountID)

	var acct Account
	var hash string
	err := row.Scan(&acct.Username, &acct.Email, &acct.FullName, &acct.Bio, &acct.Link,
		&acct.ProfileImg, &acct.CoverImg, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return Account{}, err
	}
	acct.ID = accountID

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return Account{}, apperr.New(apperr.ErrInvalidInput, "please provide both the current password and new password")
	}
	if req.CurrentPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
			return Account{}, apperr.New(apperr.ErrInvalidCredentials, "current password is incorrect")
		}
		if len(req.NewPassword) < 8 {
			return Account{}, apperr.New(apperr.ErrInvalidInput, "password must be at least 8 characters long")
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return Account{}, err
		}
		hash = string(newHash)
	}

	if req.ProfileImg != "" {
		url, err := s.swapImage(ctx, acct.ProfileImg, req.ProfileImg)
		if err != nil {
			return Account{}, err
		}
		acct.ProfileImg = url
	}
	if req.CoverImg != "" {
		url, err := s.swapImage(ctx, acct.CoverImg, req.CoverImg)
		if err != nil {
			return Account{}, err
		}
		acct.CoverImg = url
	}

	if req.Username != "" {
		acct.Username = req.Username
	}
	if req.Email != "" {
		acct.Email = req.Email
	}
	if req.FullName != "" {
		acct.FullName = req.FullName
	}
	if req.Bio != "" {
		acct.Bio = req.Bio
	}
	if req.Link != "" {
		acct.Link = req.Link
	}

	row = s.db.QueryRow(ctx, `
		UPDATE users
		SET username=$2, email=$3, full_name=$4, bio=$5, link=$6, profile_img=$7, cover_img=$8, password_hash=$9, updated_at=now()
		WHERE id=$1
		RETURNING created_at, updated_at
	`, acct.ID, acct.Username, acct.Email, acct.FullName, acct.Bio, acct.Link, acct.ProfileImg, acct.CoverImg, hash)
	if err := row.Scan(&acct.CreatedAt, &acct.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, apperr.New(apperr.ErrConflict, "username or email already taken")
		}
		return Account{}, err
	}

	if err := s.loadEdges(ctx, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// swapImage removes the previously hosted asset, then uploads the new
// payload. The stored reference only changes after the upload succeeds.
func (s *Service) swapImage(ctx context.Context, current, payload string) (string, error) {
	if current != "" {
		if err := s.media.Destroy(ctx, media.PublicID(current)); err != nil {
			return "", apperr.New(apperr.ErrUpstream, "removing the old image failed")
		}
	}
	url, err := s.media.Upload(ctx, payload)
	if err != nil {
		return "", apperr.New(apperr.ErrUpstream, "uploading the image failed")
	}
	return url, nil
}

func (s *Service) loadEdges(ctx context.Context, acct *Account) error {
	var err error
	if acct.Followers, err = stringColumn(ctx, s.db, `
		SELECT follower_id FROM user_follows WHERE following_id=$1 ORDER BY created_at
	`, acct.ID); err != nil {
		return err
	}
	if acct.Following, err = stringColumn(ctx, s.db, `
		SELECT following_id FROM user_follows WHERE follower_id=$1 ORDER BY created_at
	`, acct.ID); err != nil {
		return err
	}
	acct.LikedPosts, err = stringColumn(ctx, s.db, `
		SELECT post_id FROM post_likes WHERE user_id=$1 ORDER BY created_at
	`, acct.ID)
	return err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.Bio, &a.Link,
		&a.ProfileImg, &a.CoverImg, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanAccountRows(rows pgx.Rows) (Account, error) {
	var a Account
	err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.Bio, &a.Link,
		&a.ProfileImg, &a.CoverImg, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func stringColumn(ctx context.Context, q db.Querier, sql, arg string) ([]string, error) {
	rows, err := q.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
