package entities

import "strings"

const CategoryNameMaxLength = 100

// Category groups services
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SameName compares category names the way the uniqueness index does
func (c *Category) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}
