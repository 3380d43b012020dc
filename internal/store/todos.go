package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"todotracker/internal/database"
	"todotracker/internal/models"
)

const (
	maxTitleLength   = 255
	maxMessageLength = 500
)

// Todos is the owner-scoped repository for todos and their comments. Every
// method takes the authenticated owner id and resolves the todo through it
// before reading or writing anything.
type Todos struct {
	db  *database.DB
	now func() time.Time
}

func NewTodos(db *database.DB) *Todos {
	return &Todos{db: db, now: time.Now}
}

// List returns the owner's todos, newest first, each with its comments.
func (s *Todos) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, title, done, user_id, created_at
			 FROM todo_item
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		index := make(map[int64]int)
		for rows.Next() {
			var todo models.Todo
			if err := rows.Scan(&todo.ID, &todo.Title, &todo.Done, &todo.OwnerID, &todo.CreatedAt); err != nil {
				return err
			}
			todo.Comments = make([]models.Comment, 0)
			index[todo.ID] = len(todos)
			todos = append(todos, todo)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(todos) == 0 {
			return nil
		}

		commentRows, err := tx.QueryContext(ctx,
			`SELECT c.id, c.message, c.todo_id, c.created_at
			 FROM comment c
			 JOIN todo_item t ON t.id = c.todo_id
			 WHERE t.user_id = $1
			 ORDER BY c.created_at ASC, c.id ASC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer commentRows.Close()

		for commentRows.Next() {
			var comment models.Comment
			if err := commentRows.Scan(&comment.ID, &comment.Message, &comment.TodoID, &comment.CreatedAt); err != nil {
				return err
			}
			if i, ok := index[comment.TodoID]; ok {
				todos[i].Comments = append(todos[i].Comments, comment)
			}
		}
		return commentRows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *Todos) Create(ctx context.Context, ownerID int64, title string) (*models.Todo, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Title:     title,
		Done:      false,
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Comments:  make([]models.Comment, 0),
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO todo_item (title, done, user_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		todo.Title, todo.Done, todo.OwnerID, todo.CreatedAt,
	).Scan(&todo.ID)
	if err != nil {
		// The owner was deleted while its token is still valid.
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return todo, nil
}

// Get returns the todo when it exists and belongs to ownerID, ErrNotFound otherwise.
func (s *Todos) Get(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	var todo *models.Todo
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		todo, err = ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}
		todo.Comments, err = loadComments(ctx, tx, todo.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Update applies the non-nil fields of patch.
func (s *Todos) Update(ctx context.Context, ownerID, todoID int64, patch models.TodoPatch) (*models.Todo, error) {
	var todo *models.Todo
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		todo, err = ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			title, err := validateTitle(*patch.Title)
			if err != nil {
				return err
			}
			todo.Title = title
		}
		if patch.Done != nil {
			todo.Done = *patch.Done
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE todo_item SET title = $1, done = $2 WHERE id = $3`,
			todo.Title, todo.Done, todo.ID,
		); err != nil {
			return err
		}

		todo.Comments, err = loadComments(ctx, tx, todo.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Toggle flips done. Applying it twice restores the original value.
func (s *Todos) Toggle(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	var todo *models.Todo
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		todo, err = ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`UPDATE todo_item SET done = NOT done WHERE id = $1 RETURNING done`,
			todo.ID,
		).Scan(&todo.Done); err != nil {
			return err
		}

		todo.Comments, err = loadComments(ctx, tx, todo.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete removes the todo; its comments are removed by the cascade.
func (s *Todos) Delete(ctx context.Context, ownerID, todoID int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		todo, err := ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM todo_item WHERE id = $1`, todo.ID)
		return err
	})
}

func (s *Todos) AddComment(ctx context.Context, ownerID, todoID int64, message string) (*models.Comment, error) {
	var comment *models.Comment
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		todo, err := ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}

		text, err := validateMessage(message)
		if err != nil {
			return err
		}

		comment = &models.Comment{
			Message:   text,
			TodoID:    todo.ID,
			CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		}
		return tx.QueryRowContext(ctx,
			`INSERT INTO comment (message, todo_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
			comment.Message, comment.TodoID, comment.CreatedAt,
		).Scan(&comment.ID)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes commentID only when it hangs off todoID and todoID
// belongs to ownerID.
func (s *Todos) DeleteComment(ctx context.Context, ownerID, todoID, commentID int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		todo, err := ownedTodo(ctx, tx, ownerID, todoID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM comment WHERE id = $1 AND todo_id = $2`,
			commentID, todo.ID,
		)
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
}

// ownedTodo resolves the todo by id and then checks the owner. A todo owned
// by someone else is reported exactly like a missing one.
func ownedTodo(ctx context.Context, tx *sql.Tx, ownerID, todoID int64) (*models.Todo, error) {
	var todo models.Todo
	err := tx.QueryRowContext(ctx,
		`SELECT id, title, done, user_id, created_at FROM todo_item WHERE id = $1`,
		todoID,
	).Scan(&todo.ID, &todo.Title, &todo.Done, &todo.OwnerID, &todo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if todo.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &todo, nil
}

func loadComments(ctx context.Context, tx *sql.Tx, todoID int64) ([]models.Comment, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, message, todo_id, created_at FROM comment WHERE todo_id = $1 ORDER BY created_at ASC, id ASC`,
		todoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.Message, &comment.TodoID, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func validateMessage(raw string) (string, error) {
	message := strings.TrimSpace(raw)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", ErrMessageTooLong
	}
	return message, nil
}

func withTx(ctx context.Context, db *database.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
