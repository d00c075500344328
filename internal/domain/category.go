package domain

// Category is an entry of the fixed category catalog. Transactions refer to
// categories by display name, not by id.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories is the reference catalog offered to users.
var Categories = []Category{
	{ID: "food", Name: "Food", Icon: "utensils"},
	{ID: "transport", Name: "Transport", Icon: "car"},
	{ID: "shopping", Name: "Shopping", Icon: "shopping-bag"},
	{ID: "housing", Name: "Housing", Icon: "home"},
	{ID: "utilities", Name: "Utilities", Icon: "zap"},
	{ID: "health", Name: "Health", Icon: "heart-pulse"},
	{ID: "entertainment", Name: "Entertainment", Icon: "tv"},
	{ID: "salary", Name: "Salary", Icon: "briefcase"},
	{ID: "investment", Name: "Investment", Icon: "trending-up"},
	{ID: "other", Name: "Other", Icon: "help-circle"},
}

// LookupCategory finds a catalog entry by exact display name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryIcon returns the icon token for a category name, or "" when the
// name is not in the catalog.
func CategoryIcon(name string) string {
	c, _ := LookupCategory(name)
	return c.Icon
}
