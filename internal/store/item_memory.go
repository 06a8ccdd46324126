package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// ItemMemoryStore persists the per-user mapping from grocery item name to
// the category it was last filed under. Names are keyed lower-cased; one
// row per (user, name), last write wins.
type ItemMemoryStore struct {
	db *sql.DB
}

func NewItemMemoryStore(db *sql.DB) *ItemMemoryStore {
	return &ItemMemoryStore{db: db}
}

// GetAll returns the user's full memory snapshot.
func (s *ItemMemoryStore) GetAll(userID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT item_name, category FROM item_memory WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list item memory: %w", err)
	}
	defer rows.Close()

	memory := make(map[string]string)
	for rows.Next() {
		var name, category string
		if err := rows.Scan(&name, &category); err != nil {
			return nil, fmt.Errorf("scan item memory: %w", err)
		}
		memory[name] = category
	}
	return memory, rows.Err()
}

// Save upserts the remembered category for the item name.
func (s *ItemMemoryStore) Save(userID int64, itemName, category string) error {
	_, err := s.db.Exec(
		`INSERT INTO item_memory (user_id, item_name, category) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, item_name)
		 DO UPDATE SET category = excluded.category, updated_at = CURRENT_TIMESTAMP`,
		userID, strings.ToLower(itemName), category,
	)
	if err != nil {
		return fmt.Errorf("save item memory: %w", err)
	}
	return nil
}
