package models

// CategoryName is one of the fixed category tags
type CategoryName string

const (
	CategorySpiritual CategoryName = "spiritual"
	CategoryFamily    CategoryName = "family"
	CategoryStudy     CategoryName = "study"
	CategoryWork      CategoryName = "work"
	CategoryPersonal  CategoryName = "personal"
	CategoryHealth    CategoryName = "health"
	CategoryOther     CategoryName = "other"
)

// Category is immutable reference data shared by tasks and daily tasks
type Category struct {
	Name  CategoryName `json:"name"`
	Label string       `json:"label"`
	Color string       `json:"color"`
}

// DefaultCategories is the seed set loaded by `configure categories seed`
var DefaultCategories = []Category{
	{Name: CategorySpiritual, Label: "Spiritual", Color: "#FF6B6B"},
	{Name: CategoryFamily, Label: "Family", Color: "#4ECDC4"},
	{Name: CategoryStudy, Label: "Study", Color: "#45B7D1"},
	{Name: CategoryWork, Label: "Work", Color: "#F9A602"},
	{Name: CategoryPersonal, Label: "Personal", Color: "#9B59B6"},
	{Name: CategoryHealth, Label: "Health", Color: "#2ECC71"},
	{Name: CategoryOther, Label: "Other", Color: "#95A5A6"},
}

// IsValid reports whether n is one of the fixed category names
func (n CategoryName) IsValid() bool {
	for _, c := range DefaultCategories {
		if c.Name == n {
			return true
		}
	}
	return false
}
