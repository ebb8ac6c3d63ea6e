package post

import (
	"context"
	"errors"
	"log"

	"backend-xclone/internal/db"
	"backend-xclone/internal/media"
	"backend-xclone/internal/shared/apperr"
	"backend-xclone/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const postBase = `
	SELECT p.id, p.text, p.img, p.created_at, u.id, u.username, u.full_name, u.profile_img
	FROM posts p JOIN users u ON u.id = p.user_id`

type Service struct {
	db    db.Querier
	media media.Store
	hub   *stream.Hub
}

func NewService(q db.Querier, store media.Store, hub *stream.Hub) *Service {
	return &Service{db: q, media: store, hub: hub}
}

func (s *Service) Create(ctx context.Context, authorID, text, img string) (Post, error) {
	author, err := s.authorByID(ctx, authorID)
	if err != nil {
		return Post{}, err
	}
	if text == "" && img == "" {
		return Post{}, apperr.New(apperr.ErrInvalidInput, "post must have text or image")
	}

	hosted := ""
	if img != "" {
		hosted, err = s.media.Upload(ctx, img)
		if err != nil {
			return Post{}, apperr.New(apperr.ErrUpstream, "media upload failed")
		}
	}

	p := Post{
		ID:       uuid.NewString(),
		Author:   author,
		Text:     text,
		Img:      hosted,
		Likes:    []string{},
		Comments: []Comment{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, text, img)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, p.ID, authorID, p.Text, p.Img)
	if err := row.Scan(&p.CreatedAt); err != nil {
		if hosted != "" {
			// Roll the upload back so the asset is not orphaned; if even
			// that fails, leave a trace for manual cleanup.
			if derr := s.media.Destroy(ctx, media.PublicID(hosted)); derr != nil {
				log.Printf("orphaned media %s after failed post save: %v", hosted, derr)
			}
		}
		return Post{}, apperr.New(apperr.ErrUpstream, "saving post failed")
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, postID, requesterID string) error {
	var ownerID, img string
	err := s.db.QueryRow(ctx, `SELECT user_id, img FROM posts WHERE id=$1`, postID).Scan(&ownerID, &img)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.ErrNotFound, "no post found")
		}
		return err
	}
	if ownerID != requesterID {
		return apperr.New(apperr.ErrForbidden, "you are not allowed to delete this post")
	}

	// Best effort: a hosting failure must not block record deletion.
	if img != "" {
		if err := s.media.Destroy(ctx, media.PublicID(img)); err != nil {
			log.Printf("media delete failed for post %s (%s): %v", postID, img, err)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id=$1`, postID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM post_comments WHERE post_id=$1`, postID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, postID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) Comment(ctx context.Context, postID, authorID, text string) (Post, error) {
	if text == "" {
		return Post{}, apperr.New(apperr.ErrInvalidInput, "please enter text to comment on the post")
	}

	var found bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)`, postID).Scan(&found); err != nil {
		return Post{}, err
	}
	if !found {
		return Post{}, apperr.New(apperr.ErrNotFound, "post not found")
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, body)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), postID, authorID, text); err != nil {
		return Post{}, err
	}
	return s.ByID(ctx, postID)
}

// ToggleLike flips the like edge between actor and post and reports whether
// the post is now liked. Like edge and like notification commit together.
func (s *Service) ToggleLike(ctx context.Context, postID, actorID string) (bool, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id=$1`, postID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.New(apperr.ErrNotFound, "no post found")
		}
		return false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
	`, postID, actorID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, postID, actorID); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO notifications (id, from_id, to_id, type, read)
		VALUES ($1,$2,$3,'like',false)
	`, uuid.NewString(), actorID, authorID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	if s.hub != nil {
		s.hub.NotifyEvent(stream.Event{Type: "like", From: actorID, To: authorID})
	}
	return true, nil
}

func (s *Service) All(ctx context.Context) ([]Post, error) {
	return s.list(ctx, "")
}

func (s *Service) ByAuthor(ctx context.Context, username string) ([]Post, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return s.list(ctx, `WHERE p.user_id=$1`, authorID)
}

func (s *Service) FollowingFeed(ctx context.Context, viewerID string) ([]Post, error) {
	if err := s.requireUser(ctx, viewerID); err != nil {
		return nil, err
	}
	return s.list(ctx, `WHERE p.user_id IN (SELECT following_id FROM user_follows WHERE follower_id=$1)`, viewerID)
}

func (s *Service) LikedBy(ctx context.Context, accountID string) ([]Post, error) {
	if err := s.requireUser(ctx, accountID); err != nil {
		return nil, err
	}
	return s.list(ctx, `WHERE p.id IN (SELECT post_id FROM post_likes WHERE user_id=$1)`, accountID)
}

func (s *Service) ByID(ctx context.Context, postID string) (Post, error) {
	posts, err := s.list(ctx, `WHERE p.id=$1`, postID)
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, apperr.New(apperr.ErrNotFound, "post not found")
	}
	return posts[0], nil
}

func (s *Service) requireUser(ctx context.Context, accountID string) error {
	var found bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, accountID).Scan(&found); err != nil {
		return err
	}
	if !found {
		return apperr.New(apperr.ErrNotFound, "user not found")
	}
	return nil
}

func (s *Service) list(ctx context.Context, where string, args ...any) ([]Post, error) {
	sql := postBase
	if where != "" {
		sql += "\n\t" + where
	}
	sql += "\n\tORDER BY p.created_at DESC"

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	ids := []string{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Text, &p.Img, &p.CreatedAt,
			&p.Author.ID, &p.Author.Username, &p.Author.FullName, &p.Author.ProfileImg); err != nil {
			return nil, err
		}
		p.Likes = []string{}
		p.Comments = []Comment{}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	likes, err := s.loadLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if l, ok := likes[posts[i].ID]; ok {
			posts[i].Likes = l
		}
		if c, ok := comments[posts[i].ID]; ok {
			posts[i].Comments = c
		}
	}
	return posts, nil
}

func (s *Service) loadLikes(ctx context.Context, postIDs []string) (map[string][]string, error) {
	if len(postIDs) == 0 {
		return map[string][]string{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1)
		ORDER BY created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := map[string][]string{}
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		likes[postID] = append(likes[postID], userID)
	}
	return likes, rows.Err()
}

func (s *Service) loadComments(ctx context.Context, postIDs []string) (map[string][]Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT c.post_id, c.id, c.body, c.created_at, u.id, u.username, u.full_name, u.profile_img
		FROM post_comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := map[string][]Comment{}
	for rows.Next() {
		var postID string
		var cm Comment
		if err := rows.Scan(&postID, &cm.ID, &cm.Text, &cm.CreatedAt,
			&cm.Author.ID, &cm.Author.Username, &cm.Author.FullName, &cm.Author.ProfileImg); err != nil {
			return nil, err
		}
		comments[postID] = append(comments[postID], cm)
	}
	return comments, rows.Err()
}

func (s *Service) authorByID(ctx context.Context, accountID string) (Author, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, profile_img FROM users WHERE id=$1
	`, accountID)
	var a Author
	if err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.ProfileImg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return Author{}, err
	}
	return a, nil
}
