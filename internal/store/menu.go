package store

import (
	"database/sql"
	"fmt"

	"github.com/larsfv/kokebok/internal/model"
)

type MenuStore struct {
	db *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

const menuCols = `id, user_id, name, servings, created_at, updated_at`

func scanMenu(scanner interface{ Scan(...any) error }) (*model.Menu, error) {
	var m model.Menu
	err := scanner.Scan(&m.ID, &m.UserID, &m.Name, &m.Servings, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MenuStore) Create(userID int64, name string, servings int) (*model.Menu, error) {
	result, err := s.db.Exec(
		`INSERT INTO menus (user_id, name, servings) VALUES (?, ?, ?)`,
		userID, name, servings,
	)
	if err != nil {
		return nil, fmt.Errorf("insert menu: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

// GetByID loads the menu with its recipe associations, each carrying the
// full nested recipe. Associations are ordered by course, then position.
func (s *MenuStore) GetByID(userID, id int64) (*model.Menu, error) {
	row := s.db.QueryRow(`SELECT `+menuCols+` FROM menus WHERE id = ? AND user_id = ?`, id, userID)
	m, err := scanMenu(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}

	m.Recipes, err = s.loadMenuRecipes(userID, m.ID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MenuStore) loadMenuRecipes(userID, menuID int64) ([]model.MenuRecipe, error) {
	rows, err := s.db.Query(
		`SELECT mr.id, mr.menu_id, mr.recipe_id, mr.course_type, mr.position, mr.created_at, r.id
		 FROM menu_recipes mr
		 LEFT JOIN recipes r ON r.id = mr.recipe_id
		 WHERE mr.menu_id = ?
		 ORDER BY mr.course_type ASC, mr.position ASC`,
		menuID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu recipes: %w", err)
	}
	defer rows.Close()

	var menuRecipes []model.MenuRecipe
	var recipeIDs []int64
	for rows.Next() {
		var mr model.MenuRecipe
		var joined sql.NullInt64
		if err := rows.Scan(&mr.ID, &mr.MenuID, &mr.RecipeID, &mr.CourseType, &mr.Position, &mr.CreatedAt, &joined); err != nil {
			return nil, fmt.Errorf("scan menu recipe: %w", err)
		}
		if joined.Valid {
			recipeIDs = append(recipeIDs, joined.Int64)
		}
		menuRecipes = append(menuRecipes, mr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Second pass: attach the full recipes. scanRecipe decodes JSON columns,
	// which is awkward to interleave with the association scan above.
	recipeStore := NewRecipeStore(s.db)
	byID := make(map[int64]*model.Recipe, len(recipeIDs))
	for _, rid := range recipeIDs {
		r, err := recipeStore.GetByID(userID, rid)
		if err != nil {
			return nil, err
		}
		if r != nil {
			byID[rid] = r
		}
	}
	for i := range menuRecipes {
		menuRecipes[i].Recipe = byID[menuRecipes[i].RecipeID]
	}
	return menuRecipes, nil
}

func (s *MenuStore) List(userID int64) ([]model.Menu, error) {
	rows, err := s.db.Query(
		`SELECT `+menuCols+` FROM menus WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		menus = append(menus, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range menus {
		menus[i].Recipes, err = s.loadMenuRecipes(userID, menus[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return menus, nil
}

func (s *MenuStore) Update(userID, id int64, name string, servings int) (*model.Menu, error) {
	_, err := s.db.Exec(
		`UPDATE menus SET name = ?, servings = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		name, servings, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *MenuStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM menus WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return nil
}

// AddRecipe appends the recipe to the menu's course group, at the next free
// position.
func (s *MenuStore) AddRecipe(userID, menuID, recipeID int64, course model.CourseType) (*model.MenuRecipe, error) {
	m, err := s.GetByID(userID, menuID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	var next int
	err = s.db.QueryRow(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM menu_recipes WHERE menu_id = ? AND course_type = ?`,
		menuID, course,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO menu_recipes (menu_id, recipe_id, course_type, position) VALUES (?, ?, ?, ?)`,
		menuID, recipeID, course, next,
	)
	if err != nil {
		return nil, fmt.Errorf("insert menu recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var mr model.MenuRecipe
	row := s.db.QueryRow(
		`SELECT id, menu_id, recipe_id, course_type, position, created_at FROM menu_recipes WHERE id = ?`, id,
	)
	if err := row.Scan(&mr.ID, &mr.MenuID, &mr.RecipeID, &mr.CourseType, &mr.Position, &mr.CreatedAt); err != nil {
		return nil, fmt.Errorf("get menu recipe: %w", err)
	}
	mr.Recipe, err = NewRecipeStore(s.db).GetByID(userID, mr.RecipeID)
	if err != nil {
		return nil, err
	}
	return &mr, nil
}

// RemoveRecipe deletes the association and renumbers the remaining rows of
// its course group so positions stay a gap-free 0..n-1. Returns false if the
// association does not exist for this user.
func (s *MenuStore) RemoveRecipe(userID, menuID, menuRecipeID int64) (bool, error) {
	var course model.CourseType
	err := s.db.QueryRow(
		`SELECT mr.course_type FROM menu_recipes mr
		 JOIN menus m ON m.id = mr.menu_id
		 WHERE mr.id = ? AND mr.menu_id = ? AND m.user_id = ?`,
		menuRecipeID, menuID, userID,
	).Scan(&course)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get menu recipe: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM menu_recipes WHERE id = ?`, menuRecipeID); err != nil {
		return false, fmt.Errorf("delete menu recipe: %w", err)
	}
	if err := renumberCourse(tx, menuID, course); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// ReorderCourse rewrites the positions of a course group to match the given
// association id order. The ids must cover the group exactly.
func (s *MenuStore) ReorderCourse(userID, menuID int64, course model.CourseType, orderedIDs []int64) error {
	rows, err := s.db.Query(
		`SELECT mr.id FROM menu_recipes mr
		 JOIN menus m ON m.id = mr.menu_id
		 WHERE mr.menu_id = ? AND mr.course_type = ? AND m.user_id = ?`,
		menuID, course, userID,
	)
	if err != nil {
		return fmt.Errorf("list course group: %w", err)
	}
	defer rows.Close()

	existing := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(orderedIDs) != len(existing) {
		return fmt.Errorf("reorder: got %d ids, course group has %d", len(orderedIDs), len(existing))
	}
	for _, id := range orderedIDs {
		if !existing[id] {
			return fmt.Errorf("reorder: id %d is not in the course group", id)
		}
		delete(existing, id)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		if _, err := tx.Exec(`UPDATE menu_recipes SET position = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// renumberCourse rewrites a course group's positions to 0..n-1, preserving
// the current order.
func renumberCourse(db execer, menuID int64, course model.CourseType) error {
	rows, err := db.Query(
		`SELECT id FROM menu_recipes WHERE menu_id = ? AND course_type = ? ORDER BY position ASC, id ASC`,
		menuID, course,
	)
	if err != nil {
		return fmt.Errorf("list course group: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for i, id := range ids {
		if _, err := db.Exec(`UPDATE menu_recipes SET position = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("renumber position: %w", err)
		}
	}
	return nil
}
