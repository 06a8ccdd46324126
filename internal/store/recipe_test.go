package store

import (
	"testing"

	"github.com/larsfv/kokebok/internal/database"
	"github.com/larsfv/kokebok/internal/model"
)

func setupRecipeTestDB(t *testing.T) (*RecipeStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("cook@example.com", "Cook", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewRecipeStore(db), u.ID
}

func sampleRecipe() model.Recipe {
	return model.Recipe{
		Title:       "Pannekaker",
		Description: "Thin Norwegian pancakes",
		Ingredients: []model.Ingredient{
			{Amount: "2", Unit: "dl", Name: "flour"},
			{Amount: "4", Unit: "dl", Name: "milk", Category: "dairy"},
			{Amount: "3", Unit: "", Name: "eggs"},
		},
		Instructions: []string{"Whisk everything", "Rest 30 min", "Fry thin"},
		Tips:         "Rest the batter for fluffier pancakes",
		PrepTime:     10,
		CookTime:     20,
		Servings:     4,
		Category:     "dinner",
	}
}

func TestRecipeCreateAndGet(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	created, err := rs.Create(userID, sampleRecipe())
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero id")
	}

	got, err := rs.GetByID(userID, created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got == nil {
		t.Fatal("expected recipe, got nil")
	}
	if got.Title != "Pannekaker" {
		t.Errorf("title = %q, want Pannekaker", got.Title)
	}
	if len(got.Ingredients) != 3 {
		t.Fatalf("ingredients = %d, want 3", len(got.Ingredients))
	}
	if got.Ingredients[1].Category != "dairy" {
		t.Errorf("milk category = %q, want dairy", got.Ingredients[1].Category)
	}
	if len(got.Instructions) != 3 {
		t.Errorf("instructions = %d, want 3", len(got.Instructions))
	}
	if got.Servings != 4 {
		t.Errorf("servings = %d, want 4", got.Servings)
	}
}

func TestRecipeGetScopedToUser(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	created, _ := rs.Create(userID, sampleRecipe())

	got, err := rs.GetByID(userID+1, created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got != nil {
		t.Error("expected nil for another user's recipe")
	}
}

func TestRecipeLegacyDoubleEncodedIngredients(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	// Rows written by old clients stored each ingredient as a JSON string
	// containing a JSON object.
	legacy := `["{\"amount\":\"500\",\"unit\":\"g\",\"name\":\"flour\"}","{\"amount\":\"1\",\"unit\":\"ts\",\"name\":\"salt\"}"]`
	result, err := rs.db.Exec(
		`INSERT INTO recipes (user_id, title, description, ingredients, instructions, tips, notes, prep_time, cook_time, servings, category, image_url)
		 VALUES (?, 'Old Bread', '', ?, '[]', '', '[]', 0, 0, 4, '', '')`,
		userID, legacy,
	)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	id, _ := result.LastInsertId()

	got, err := rs.GetByID(userID, id)
	if err != nil {
		t.Fatalf("get legacy recipe: %v", err)
	}
	if len(got.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(got.Ingredients))
	}
	if got.Ingredients[0].Name != "flour" || got.Ingredients[0].Amount != "500" {
		t.Errorf("first ingredient = %+v, want 500 g flour", got.Ingredients[0])
	}
}

func TestRecipeList(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	r1 := sampleRecipe()
	r2 := sampleRecipe()
	r2.Title = "Vafler"
	rs.Create(userID, r1)
	rs.Create(userID, r2)

	recipes, err := rs.List(userID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("recipes = %d, want 2", len(recipes))
	}
	// Newest first; equal timestamps fall back to id descending.
	if recipes[0].Title != "Vafler" {
		t.Errorf("first = %q, want Vafler", recipes[0].Title)
	}
}

func TestRecipeSearch(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	r1 := sampleRecipe()
	r2 := sampleRecipe()
	r2.Title = "Tomato Soup"
	r2.Description = "Quick weeknight soup"
	r2.Category = "soup"
	rs.Create(userID, r1)
	rs.Create(userID, r2)

	byTitle, err := rs.Search(userID, "tomato")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Tomato Soup" {
		t.Errorf("search tomato = %d results, want just Tomato Soup", len(byTitle))
	}

	byCategory, err := rs.Search(userID, "soup")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byCategory) != 1 {
		t.Errorf("search soup = %d results, want 1", len(byCategory))
	}

	none, err := rs.Search(userID, "sushi")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search sushi = %d results, want 0", len(none))
	}
}

func TestRecipeUpdate(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	created, _ := rs.Create(userID, sampleRecipe())

	updated := sampleRecipe()
	updated.Title = "Pannekaker med blåbær"
	updated.Ingredients = append(updated.Ingredients, model.Ingredient{Amount: "1", Unit: "dl", Name: "blueberries"})
	updated.Servings = 6

	got, err := rs.Update(userID, created.ID, updated)
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if got.Title != "Pannekaker med blåbær" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Ingredients) != 4 {
		t.Errorf("ingredients = %d, want 4", len(got.Ingredients))
	}
	if got.Servings != 6 {
		t.Errorf("servings = %d, want 6", got.Servings)
	}
}

func TestRecipeSetImageURL(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	created, _ := rs.Create(userID, sampleRecipe())

	if err := rs.SetImageURL(userID, created.ID, "https://cdn.example.com/recipe-images/abc.jpg"); err != nil {
		t.Fatalf("set image url: %v", err)
	}
	got, _ := rs.GetByID(userID, created.ID)
	if got.ImageURL != "https://cdn.example.com/recipe-images/abc.jpg" {
		t.Errorf("image_url = %q", got.ImageURL)
	}
}

func TestRecipeDelete(t *testing.T) {
	rs, userID := setupRecipeTestDB(t)

	created, _ := rs.Create(userID, sampleRecipe())

	if err := rs.Delete(userID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := rs.GetByID(userID, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
