package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/larsfv/kokebok/internal/amount"
	"github.com/larsfv/kokebok/internal/grocery"
	"github.com/larsfv/kokebok/internal/model"
)

// ErrMenuNotFound is returned when the menu id does not exist for the user.
var ErrMenuNotFound = errors.New("menu not found")

// ErrNoRecipes is returned when a menu has no recipe associations. Nothing
// is persisted in that case.
var ErrNoRecipes = errors.New("no recipes in menu")

// MenuSource loads a menu with its nested recipes and their ingredients.
type MenuSource interface {
	GetByID(userID, id int64) (*model.Menu, error)
}

// ListWriter persists grocery lists and their items. CreateItems writes the
// given items in slice order and returns the rows created so far; on error
// the already-written rows stay persisted (no rollback).
type ListWriter interface {
	CreateList(userID int64, name string) (*model.GroceryList, error)
	CreateItems(listID int64, items []model.GroceryItem) ([]model.GroceryItem, error)
}

// MemorySource returns the user's learned item-name -> category mapping,
// keyed by lower-cased name.
type MemorySource interface {
	GetAll(userID int64) (map[string]string, error)
}

// Builder generates a persisted grocery list from a menu.
type Builder struct {
	menus  MenuSource
	lists  ListWriter
	memory MemorySource
	logger *slog.Logger
	now    func() time.Time
}

func NewBuilder(menus MenuSource, lists ListWriter, memory MemorySource, logger *slog.Logger) *Builder {
	return &Builder{
		menus:  menus,
		lists:  lists,
		memory: memory,
		logger: logger,
		now:    time.Now,
	}
}

// Generate aggregates the menu's ingredients and writes them as a new
// grocery list. listName is optional; the default is "<menu name> - <date>".
// Item order follows aggregation order. A failure while adding items leaves
// the list and any items written before the failure in place.
func (b *Builder) Generate(userID, menuID int64, listName string) (*model.GroceryList, []model.GroceryItem, error) {
	m, err := b.menus.GetByID(userID, menuID)
	if err != nil {
		return nil, nil, fmt.Errorf("load menu: %w", err)
	}
	if m == nil {
		return nil, nil, ErrMenuNotFound
	}
	if len(m.Recipes) == 0 {
		return nil, nil, ErrNoRecipes
	}

	aggregated := Aggregate(m, b.logger)

	// One snapshot up front; resolution must not hit storage per item.
	memory, err := b.memory.GetAll(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load item memory: %w", err)
	}

	if listName == "" {
		listName = fmt.Sprintf("%s - %s", m.Name, b.now().Format("2006-01-02"))
	}

	list, err := b.lists.CreateList(userID, listName)
	if err != nil {
		return nil, nil, fmt.Errorf("create grocery list: %w", err)
	}

	items := make([]model.GroceryItem, 0, len(aggregated))
	for _, ing := range aggregated {
		items = append(items, model.GroceryItem{
			ListID:   list.ID,
			Name:     fmt.Sprintf("%s%s %s", amount.Format(ing.ScaledAmount), ing.Unit, ing.Name),
			Category: grocery.Resolve(ing.Name, ing.Category, memory),
			Quantity: 1,
		})
	}

	created, err := b.lists.CreateItems(list.ID, items)
	if err != nil {
		return list, created, fmt.Errorf("add grocery items: %w", err)
	}

	b.logger.Info("shopping list generated",
		"menu_id", m.ID, "list_id", list.ID, "items", len(created))
	return list, created, nil
}
