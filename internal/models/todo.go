package models

import (
	"time"
)

// Todo is owned by exactly one user; OwnerID is fixed at creation.
type Todo struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Done      bool      `json:"done" db:"done"`
	OwnerID   int64     `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Comments  []Comment `json:"comments"`
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	TodoID    int64     `json:"todo_id" db:"todo_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TodoPatch carries a partial update; nil fields keep their stored value.
type TodoPatch struct {
	Title *string
	Done  *bool
}
