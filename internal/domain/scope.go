package domain

import "fmt"

// ScopeKind discriminates what a budget is committed to
type ScopeKind int

const (
	ScopeCategory ScopeKind = iota
	ScopeSubcategory
	ScopeGroup
)

// ScopeKey is the canonical identity of a budget's target: a category, a
// category narrowed to one subcategory, or a named group of categories.
// It is a comparable value type, so structural equality (==) replaces the
// string-concatenation keys used elsewhere for deduplication.
type ScopeKey struct {
	Kind          ScopeKind
	CategoryID    int32
	SubcategoryID int32
	GroupID       int32
}

// CategoryScope builds the key for a single-category budget
func CategoryScope(categoryID int32) ScopeKey {
	return ScopeKey{Kind: ScopeCategory, CategoryID: categoryID}
}

// SubcategoryScope builds the key for a category narrowed to a subcategory
func SubcategoryScope(categoryID, subcategoryID int32) ScopeKey {
	return ScopeKey{Kind: ScopeSubcategory, CategoryID: categoryID, SubcategoryID: subcategoryID}
}

// GroupScope builds the key for a grouped budget
func GroupScope(groupID int32) ScopeKey {
	return ScopeKey{Kind: ScopeGroup, GroupID: groupID}
}

// String renders the key for logging and cache keys
func (k ScopeKey) String() string {
	switch k.Kind {
	case ScopeGroup:
		return fmt.Sprintf("group:%d", k.GroupID)
	case ScopeSubcategory:
		return fmt.Sprintf("cat:%d:sub:%d", k.CategoryID, k.SubcategoryID)
	default:
		return fmt.Sprintf("cat:%d", k.CategoryID)
	}
}
