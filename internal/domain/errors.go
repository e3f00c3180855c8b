package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrGroupNotFound       = errors.New("budget group not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	ErrBudgetAlreadyExists = errors.New("a budget already exists for this scope and period")

	ErrInvalidAmount           = errors.New("amount must be non-negative")
	ErrInvalidPeriod           = errors.New("invalid period")
	ErrInvalidScope            = errors.New("budget requires exactly one of category or group")
	ErrGroupWithSubcategory    = errors.New("grouped budget cannot carry a subcategory")
	ErrGroupCategoriesRequired = errors.New("grouped budget requires at least one category")
	ErrCategoriesWithoutGroup  = errors.New("multiple categories require a budget group")
)
