package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"todotracker/internal/database"
	"todotracker/internal/models"
)

const (
	maxHandleLength = 120
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// Hasher turns plaintext passwords into salted hashes and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Users is the credential store.
type Users struct {
	db                *database.DB
	hasher            Hasher
	minPasswordLength int
	now               func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUsers(db *database.DB, hasher Hasher, minPasswordLength int) *Users {
	if minPasswordLength <= 0 {
		minPasswordLength = 6
	}
	return &Users{
		db:                db,
		hasher:            hasher,
		minPasswordLength: minPasswordLength,
		now:               time.Now,
	}
}

// DeleteSummary reports what a user deletion removed.
type DeleteSummary struct {
	UserID          int64 `json:"user_id"`
	DeletedTodos    int64 `json:"deleted_todos"`
	DeletedComments int64 `json:"deleted_comments"`
}

// Register creates a user with a hashed password. Surrounding whitespace is
// trimmed from the handle; after that it is matched exactly.
func (s *Users) Register(ctx context.Context, handle, password string) (*models.User, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(handle) > maxHandleLength {
		return nil, fmt.Errorf("%w: username is too long", ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, s.minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password is too long", ErrInvalidInput)
	}

	var existingID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM "user" WHERE username = $1`, handle).Scan(&existingID)
	if err == nil {
		return nil, ErrDuplicateHandle
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     handle,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO "user" (username, password, created_at) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate returns the user when password matches. Unknown handles and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Users) Authenticate(ctx context.Context, handle, password string) (*models.User, error) {
	user, err := s.UserByHandle(ctx, handle)
	if errors.Is(err, ErrNotFound) {
		// Spend the same hashing time as a real comparison.
		s.hasher.Compare(s.fallbackHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Users) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("todotracker-fallback-password")
	})
	return s.dummyHash
}

func (s *Users) UserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM "user" WHERE username = $1`, handle))
}

func (s *Users) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM "user" WHERE id = $1`, id))
}

func (s *Users) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the user; todos and comments go with it through the
// foreign key cascades, all in one transaction.
func (s *Users) DeleteUser(ctx context.Context, id int64) (DeleteSummary, error) {
	summary := DeleteSummary{UserID: id}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var existingID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM "user" WHERE id = $1`, id).Scan(&existingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM todo_item WHERE user_id = $1`, id,
		).Scan(&summary.DeletedTodos); err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM comment c JOIN todo_item t ON t.id = c.todo_id WHERE t.user_id = $1`, id,
		).Scan(&summary.DeletedComments); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return DeleteSummary{UserID: id}, err
	}
	return summary, nil
}
