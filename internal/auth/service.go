package auth

import (
	"context"
	"errors"
	"regexp"

	"backend-xclone/internal/db"
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

const accountColumns = `id, username, email, full_name, bio, link, profile_img, cover_img, created_at, updated_at`

type Service struct {
	tokens *TokenService
	db     db.Querier
}

func NewService(tokens *TokenService, q db.Querier) *Service {
	return &Service{tokens: tokens, db: q}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (Account, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return Account{}, apperr.New(apperr.ErrInvalidInput, "username, email and password are required")
	}
	if !emailPattern.MatchString(req.Email) {
		return Account{}, apperr.New(apperr.ErrInvalidInput, "invalid email format")
	}

	taken, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, req.Username)
	if err != nil {
		return Account{}, err
	}
	if taken {
		return Account{}, apperr.New(apperr.ErrConflict, "username is already taken")
	}

	registered, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, req.Email)
	if err != nil {
		return Account{}, err
	}
	if registered {
		return Account{}, apperr.New(apperr.ErrConflict, "this email is already registered")
	}

	if len(req.Password) < 8 {
		return Account{}, apperr.New(apperr.ErrInvalidInput, "password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		ID:         uuid.NewString(),
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Followers:  []string{},
		Following:  []string{},
		LikedPosts: []string{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, full_name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, acct.ID, acct.Username, acct.Email, string(hash), acct.FullName)
	if err := row.Scan(&acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+accountColumns+`, password_hash
		FROM users WHERE username=$1
	`, req.Username)

	var acct Account
	var hash string
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.FullName, &acct.Bio, &acct.Link,
		&acct.ProfileImg, &acct.CoverImg, &acct.CreatedAt, &acct.UpdatedAt, &hash)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Account{}, err
	}

	// The hash comparison runs even for unknown usernames so the failure
	// never reveals which check tripped.
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil || errors.Is(err, pgx.ErrNoRows) {
		return Account{}, apperr.New(apperr.ErrInvalidCredentials, "invalid username or password")
	}

	if err := s.loadEdges(ctx, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// AccountByID returns the full scrubbed account, follow and like sets
// included.
func (s *Service) AccountByID(ctx context.Context, id string) (Account, error) {
	acct, err := accountByField(ctx, s.db, "id", id)
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

// SessionFor issues a fresh token bound to the account as a cookie.
func (s *Service) SessionFor(accountID string) (*fiber.Cookie, error) {
	token, err := s.tokens.Issue(accountID)
	if err != nil {
		return nil, err
	}
	return s.tokens.SessionCookie(token), nil
}

func (s *Service) ExpiredSession() *fiber.Cookie {
	return s.tokens.ExpiredCookie()
}

func (s *Service) exists(ctx context.Context, sql, arg string) (bool, error) {
	var found bool
	if err := s.db.QueryRow(ctx, sql, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
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

func accountByField(ctx context.Context, q db.Querier, field, value string) (Account, error) {
	row := q.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE `+field+`=$1`, value)
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.Bio, &a.Link,
		&a.ProfileImg, &a.CoverImg, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
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
