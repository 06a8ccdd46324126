package menu

import (
	"log/slog"
	"math"
	"testing"

	"github.com/larsfv/kokebok/internal/model"
)

func testMenu(servings int, recipes ...*model.Recipe) *model.Menu {
	m := &model.Menu{ID: 1, Name: "Dinner party", Servings: servings}
	for i, r := range recipes {
		m.Recipes = append(m.Recipes, model.MenuRecipe{
			ID:         int64(i + 1),
			MenuID:     m.ID,
			CourseType: model.CourseMain,
			Position:   i,
			Recipe:     r,
		})
	}
	return m
}

func TestAggregateMergesAcrossRecipes(t *testing.T) {
	a := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "200", Unit: "g", Name: "Flour"},
	}}
	b := &model.Recipe{ID: 2, Servings: 4, Ingredients: []model.Ingredient{
		{Amount: "100", Unit: "g", Name: "flour"},
	}}

	// A scales x2 (400g), B scales x1 (100g).
	got := Aggregate(testMenu(4, a, b), slog.Default())
	if len(got) != 1 {
		t.Fatalf("expected 1 aggregated entry, got %d", len(got))
	}
	if math.Abs(got[0].ScaledAmount-500) > 1e-9 {
		t.Errorf("scaled amount = %v, want 500", got[0].ScaledAmount)
	}
	if got[0].Name != "Flour" {
		t.Errorf("name = %q, want first occurrence %q", got[0].Name, "Flour")
	}
}

func TestAggregateKeepsUnitsDistinct(t *testing.T) {
	r := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "200", Unit: "g", Name: "flour"},
		{Amount: "1", Unit: "kg", Name: "flour"},
	}}

	got := Aggregate(testMenu(2, r), slog.Default())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for differing units, got %d", len(got))
	}
}

func TestAggregateSkipsAmountlessIngredients(t *testing.T) {
	r := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "", Unit: "", Name: "salt to taste"},
		{Amount: "abc", Unit: "", Name: "pepper"},
		{Amount: "2", Unit: "", Name: "eggs"},
	}}

	got := Aggregate(testMenu(2, r), slog.Default())
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Name != "eggs" {
		t.Errorf("entry = %q, want %q", got[0].Name, "eggs")
	}
}

func TestAggregateSkipsBrokenRecipes(t *testing.T) {
	ok := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "1", Unit: "l", Name: "milk"},
	}}
	zeroServings := &model.Recipe{ID: 2, Servings: 0, Ingredients: []model.Ingredient{
		{Amount: "5", Unit: "dl", Name: "cream"},
	}}

	m := testMenu(4, ok, zeroServings, nil) // nil models a deleted recipe
	got := Aggregate(m, slog.Default())
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if math.Abs(got[0].ScaledAmount-2) > 1e-9 {
		t.Errorf("scaled amount = %v, want 2", got[0].ScaledAmount)
	}
}

func TestAggregateFirstNonEmptyCategoryWins(t *testing.T) {
	a := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "1", Unit: "l", Name: "milk"},
	}}
	b := &model.Recipe{ID: 2, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "1", Unit: "l", Name: "milk", Category: "Dairy"},
	}}
	c := &model.Recipe{ID: 3, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "1", Unit: "l", Name: "milk", Category: "Fridge"},
	}}

	got := Aggregate(testMenu(2, a, b, c), slog.Default())
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Category != "Dairy" {
		t.Errorf("category = %q, want first non-empty %q", got[0].Category, "Dairy")
	}
}

func TestAggregateOrderIsFirstInsertion(t *testing.T) {
	r := &model.Recipe{ID: 1, Servings: 2, Ingredients: []model.Ingredient{
		{Amount: "1", Unit: "kg", Name: "potatoes"},
		{Amount: "2", Unit: "", Name: "onions"},
		{Amount: "1", Unit: "kg", Name: "Potatoes"},
	}}

	got := Aggregate(testMenu(2, r), slog.Default())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Name != "potatoes" || got[1].Name != "onions" {
		t.Errorf("order = [%q, %q], want [potatoes, onions]", got[0].Name, got[1].Name)
	}
}
