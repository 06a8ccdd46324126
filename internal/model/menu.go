package model

import "time"

// CourseType classifies a recipe's role within a menu.
type CourseType string

const (
	CourseStarter CourseType = "starter"
	CourseMain    CourseType = "main"
	CourseDessert CourseType = "dessert"
)

// ValidCourseType reports whether ct is one of the known course types.
func ValidCourseType(ct CourseType) bool {
	switch ct {
	case CourseStarter, CourseMain, CourseDessert:
		return true
	}
	return false
}

type Menu struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Name      string       `json:"name"`
	Servings  int          `json:"servings"`
	Recipes   []MenuRecipe `json:"menu_recipes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MenuRecipe associates a recipe with a menu under a course type. Position is
// zero-based and gap-free within each (menu, course) group. Recipe is nil if
// the underlying recipe has been deleted.
type MenuRecipe struct {
	ID         int64      `json:"id"`
	MenuID     int64      `json:"menu_id"`
	RecipeID   int64      `json:"recipe_id"`
	CourseType CourseType `json:"course_type"`
	Position   int        `json:"position"`
	Recipe     *Recipe    `json:"recipe,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
