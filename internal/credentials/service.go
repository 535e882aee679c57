package credentials

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/db"
)

var ErrAlreadyRegistered = errors.New("credentials already exist")

// Service authenticates and registers password-based users. It is the
// only package that reads the credentials table.
type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Authenticate verifies email + password and returns the user's
// identity record. Unknown user and wrong password both map to
// auth.ErrInvalidCredentials so the response cannot be used to
// enumerate accounts.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*auth.Identity, error) {

	var (
		userID       uuid.UUID
		userEmail    string
		name         sql.NullString
		role         string
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.role, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &userEmail, &name, &role, &passwordHash)

	if err != nil {
		// hide whether user exists or not
		return nil, auth.ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	identity := &auth.Identity{
		ID:    userID.String(),
		Email: userEmail,
		Role:  auth.Role(role),
	}
	if name.Valid {
		identity.Name = &name.String
	}

	return identity, nil
}

// Register creates a user (role USER) with password credentials.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	var userID uuid.UUID

	// 1. Find or create user by email
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, role)
			VALUES ($1, 'USER')
			RETURNING id
		`, email).Scan(&userID)
	}

	if err != nil {
		return "", err
	}

	// 2. Check if credentials already exist
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)

	if err != nil {
		return "", err
	}

	if exists {
		return "", ErrAlreadyRegistered
	}

	// 3. Hash password
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	// 4. Insert credentials
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		return "", err
	}

	return userID.String(), nil
}
