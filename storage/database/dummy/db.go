package dummydb

import (
	"sync"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
	"github.com/ispeaktu/backend/core/reminder"
	"github.com/ispeaktu/backend/core/user"
)

// DB is an in-memory stand-in for the remote store, used by tests and local
// development.
type (
	DB struct {
		user     *userTable
		catalog  *catalogTable
		progress *progressTable
		reminder *reminderTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	catalogTable struct {
		sync.RWMutex
		// materials in insertion order; nested lessons/questions inline
		materials []catalog.Material
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Record
		order []string // insertion order of ids, for deterministic queries
	}

	reminderTable struct {
		sync.RWMutex
		table map[string]*reminder.Reminder
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		catalog:  &catalogTable{},
		progress: &progressTable{table: make(map[string]*progress.Record)},
		reminder: &reminderTable{table: make(map[string]*reminder.Reminder)},
	}
	return db, nil
}
