package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/larsfv/kokebok/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeCols = `id, user_id, title, description, ingredients, instructions, tips, notes, prep_time, cook_time, servings, category, image_url, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, instructions, notes []byte

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &ingredients, &instructions,
		&r.Tips, &notes, &r.PrepTime, &r.CookTime, &r.Servings, &r.Category,
		&r.ImageURL, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Ingredients, err = decodeIngredients(ingredients)
	if err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	if err := json.Unmarshal(notes, &r.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return &r, nil
}

// decodeIngredients unmarshals the stored ingredient array. Rows written by
// old clients hold double-encoded elements (JSON strings containing JSON
// objects); those are normalized here so callers only ever see typed
// ingredients.
func decodeIngredients(data []byte) ([]model.Ingredient, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	ingredients := make([]model.Ingredient, 0, len(raw))
	for _, el := range raw {
		var ing model.Ingredient
		if err := json.Unmarshal(el, &ing); err == nil {
			ingredients = append(ingredients, ing)
			continue
		}
		var encoded string
		if err := json.Unmarshal(el, &encoded); err != nil {
			return nil, fmt.Errorf("unexpected ingredient element %s", el)
		}
		if err := json.Unmarshal([]byte(encoded), &ing); err != nil {
			return nil, fmt.Errorf("legacy ingredient element: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func encodeRecipeColumns(r model.Recipe) (ingredients, instructions, notes []byte, err error) {
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	if r.Notes == nil {
		r.Notes = []model.Note{}
	}

	ingredients, err = json.Marshal(r.Ingredients)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode ingredients: %w", err)
	}
	instructions, err = json.Marshal(r.Instructions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode instructions: %w", err)
	}
	notes, err = json.Marshal(r.Notes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode notes: %w", err)
	}
	return ingredients, instructions, notes, nil
}

func (s *RecipeStore) Create(userID int64, r model.Recipe) (*model.Recipe, error) {
	ingredients, instructions, notes, err := encodeRecipeColumns(r)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO recipes (user_id, title, description, ingredients, instructions, tips, notes, prep_time, cook_time, servings, category, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, r.Title, r.Description, ingredients, instructions, r.Tips, notes,
		r.PrepTime, r.CookTime, r.Servings, r.Category, r.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *RecipeStore) GetByID(userID, id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) List(userID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

// Search matches the query case-insensitively against title, description,
// and category.
func (s *RecipeStore) Search(userID int64, query string) ([]model.Recipe, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes
		 WHERE user_id = ? AND (title LIKE ? OR description LIKE ? OR category LIKE ?)
		 ORDER BY created_at DESC, id DESC`,
		userID, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

// Update replaces the recipe's fields wholesale, including the ingredient
// and instruction lists.
func (s *RecipeStore) Update(userID, id int64, r model.Recipe) (*model.Recipe, error) {
	ingredients, instructions, notes, err := encodeRecipeColumns(r)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE recipes SET title = ?, description = ?, ingredients = ?, instructions = ?, tips = ?, notes = ?,
		 prep_time = ?, cook_time = ?, servings = ?, category = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		r.Title, r.Description, ingredients, instructions, r.Tips, notes,
		r.PrepTime, r.CookTime, r.Servings, r.Category, r.ImageURL, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(userID, id)
}

// SetImageURL updates only the stored image reference.
func (s *RecipeStore) SetImageURL(userID, id int64, imageURL string) error {
	_, err := s.db.Exec(
		`UPDATE recipes SET image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		imageURL, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set image url: %w", err)
	}
	return nil
}

func (s *RecipeStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
