package model

import "time"

// Ingredient is a positional member of a recipe's ingredient list. It has no
// identity of its own; edits replace the whole list.
type Ingredient struct {
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Note is a dated free-text annotation attached to a recipe.
type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Recipe struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Tips         string       `json:"tips,omitempty"`
	Notes        []Note       `json:"notes,omitempty"`
	PrepTime     int          `json:"prep_time"`
	CookTime     int          `json:"cook_time"`
	Servings     int          `json:"servings"`
	Category     string       `json:"category"`
	ImageURL     string       `json:"image_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
