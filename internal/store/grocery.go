package store

import (
	"database/sql"
	"fmt"

	"github.com/larsfv/kokebok/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// --- List methods ---

const listCols = `id, user_id, name, created_at, updated_at`

func scanList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	err := scanner.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *GroceryStore) CreateList(userID int64, name string) (*model.GroceryList, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_lists (user_id, name) VALUES (?, ?)`,
		userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListByID(userID, id)
}

func (s *GroceryStore) GetListByID(userID, id int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM grocery_lists WHERE id = ? AND user_id = ?`, id, userID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	l.Items, err = s.ListItems(l.ID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *GroceryStore) ListLists(userID int64) ([]model.GroceryList, error) {
	rows, err := s.db.Query(
		`SELECT `+listCols+` FROM grocery_lists WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		lists[i].Items, err = s.ListItems(lists[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return lists, nil
}

func (s *GroceryStore) RenameList(userID, id int64, name string) (*model.GroceryList, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_lists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		name, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	return s.GetListByID(userID, id)
}

func (s *GroceryStore) DeleteList(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_lists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// --- Item methods ---

const itemCols = `id, list_id, name, category, quantity, checked, created_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var checked int

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Category,
		&item.Quantity, &checked, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Checked = checked != 0
	return &item, nil
}

func (s *GroceryStore) CreateItem(listID int64, name, category string, quantity int) (*model.GroceryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_items (list_id, name, category, quantity) VALUES (?, ?, ?, ?)`,
		listID, name, category, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(listID, id)
}

// CreateItems writes the items in slice order, one insert per row, and
// returns the rows created so far. Deliberately not transactional: a
// mid-batch failure leaves the earlier rows persisted, and the caller
// surfaces the error.
func (s *GroceryStore) CreateItems(listID int64, items []model.GroceryItem) ([]model.GroceryItem, error) {
	created := make([]model.GroceryItem, 0, len(items))
	for _, item := range items {
		row, err := s.CreateItem(listID, item.Name, item.Category, item.Quantity)
		if err != nil {
			return created, fmt.Errorf("insert item %q: %w", item.Name, err)
		}
		created = append(created, *row)
	}
	return created, nil
}

func (s *GroceryStore) GetItemByID(listID, id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM grocery_items WHERE id = ? AND list_id = ?`, id, listID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *GroceryStore) ListItems(listID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items WHERE list_id = ? ORDER BY id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *GroceryStore) UpdateItem(listID, id int64, name, category string, quantity int, checked bool) (*model.GroceryItem, error) {
	checkedInt := 0
	if checked {
		checkedInt = 1
	}
	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, category = ?, quantity = ?, checked = ? WHERE id = ? AND list_id = ?`,
		name, category, quantity, checkedInt, id, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(listID, id)
}

func (s *GroceryStore) DeleteItem(listID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ? AND list_id = ?`, id, listID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *GroceryStore) ToggleChecked(listID, id int64) (*model.GroceryItem, error) {
	item, err := s.GetItemByID(listID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	_, err = s.db.Exec(
		`UPDATE grocery_items SET checked = NOT checked WHERE id = ? AND list_id = ?`,
		id, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle checked: %w", err)
	}
	return s.GetItemByID(listID, id)
}
