package service

import (
	"fmt"

	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// OverviewCache is the read-through cache for period overviews. It is an
// accelerator only: a nil or failing cache degrades to always-miss.
type OverviewCache interface {
	Get(key string) (*BudgetOverview, bool)
	Set(key string, overview *BudgetOverview, tags ...string)
	InvalidateTags(tags ...string)
}

// BudgetOverviewItem is a budget enriched with its spend and status for
// the requested period
type BudgetOverviewItem struct {
	Budget      *domain.Budget      `json:"budget"`
	DisplayName string              `json:"displayName"`
	Spent       decimal.Decimal     `json:"spent"`
	Percentage  decimal.Decimal     `json:"percentage"`
	Status      domain.BudgetStatus `json:"status"`
	CategoryIDs []int32             `json:"categoryIds,omitempty"`
}

// BudgetOverview is the full budget picture for one workspace and period
type BudgetOverview struct {
	Period        domain.Period         `json:"period"`
	TotalBudgeted decimal.Decimal       `json:"totalBudgeted"`
	TotalSpent    decimal.Decimal       `json:"totalSpent"`
	Budgets       []*BudgetOverviewItem `json:"budgets"`
}

// BudgetQueryService assembles the period overview: propagate recurring
// budgets, load the period's budgets and relations, aggregate spend and
// attach status per budget
type BudgetQueryService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	subcategoryRepo domain.SubcategoryRepository
	groupRepo       domain.BudgetGroupRepository
	propagation     *BudgetPropagationService
	aggregation     *SpendAggregationService
	cache           OverviewCache
}

// NewBudgetQueryService creates a new BudgetQueryService
func NewBudgetQueryService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	subcategoryRepo domain.SubcategoryRepository,
	groupRepo domain.BudgetGroupRepository,
	propagation *BudgetPropagationService,
	aggregation *SpendAggregationService,
) *BudgetQueryService {
	return &BudgetQueryService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		groupRepo:       groupRepo,
		propagation:     propagation,
		aggregation:     aggregation,
	}
}

// SetCache installs the overview cache
func (s *BudgetQueryService) SetCache(cache OverviewCache) {
	s.cache = cache
}

// OverviewCacheKey builds the cache key for a workspace/period pair
func OverviewCacheKey(workspaceID int32, period domain.Period) string {
	return fmt.Sprintf("budgets:%d:%s", workspaceID, period)
}

// BudgetCacheTag tags every cached view that a budget mutation in the
// workspace must invalidate
func BudgetCacheTag(workspaceID int32) string {
	return fmt.Sprintf("budgets:ws:%d", workspaceID)
}

// ListForPeriod returns the enriched budget list for the anchored month.
// Propagation completes before aggregation begins, so the caller never
// sees spend computed against a budget set missing its recurring entries.
func (s *BudgetQueryService) ListForPeriod(workspaceID int32, year, month int) (*BudgetOverview, error) {
	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return nil, err
	}

	cacheKey := OverviewCacheKey(workspaceID, period)
	if s.cache != nil {
		if overview, ok := s.cache.Get(cacheKey); ok {
			return overview, nil
		}
	}

	if err := s.propagation.EnsureForPeriod(workspaceID, period); err != nil {
		return nil, fmt.Errorf("propagate recurring budgets: %w", err)
	}

	budgets, err := s.budgetRepo.ListByPeriod(workspaceID, period)
	if err != nil {
		return nil, fmt.Errorf("load budgets for %s: %w", period, err)
	}

	linksByBudget, err := s.loadGroupLinks(budgets)
	if err != nil {
		return nil, err
	}

	totals, err := s.aggregation.AggregateForPeriod(workspaceID, period)
	if err != nil {
		return nil, err
	}

	names, err := s.loadDisplayNames(workspaceID)
	if err != nil {
		return nil, err
	}

	overview := &BudgetOverview{
		Period:        period,
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Budgets:       make([]*BudgetOverviewItem, 0, len(budgets)),
	}

	for _, b := range budgets {
		spent := spentFor(b, linksByBudget[b.ID], totals)
		progress := domain.CalculateProgress(b.Amount, spent)

		overview.Budgets = append(overview.Budgets, &BudgetOverviewItem{
			Budget:      b,
			DisplayName: names.displayNameFor(b),
			Spent:       spent,
			Percentage:  progress.Percentage,
			Status:      progress.Status,
			CategoryIDs: linksByBudget[b.ID],
		})
		overview.TotalBudgeted = overview.TotalBudgeted.Add(b.Amount)
		overview.TotalSpent = overview.TotalSpent.Add(spent)
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, overview, BudgetCacheTag(workspaceID))
	}
	return overview, nil
}

// spentFor resolves a budget's actual spend from the aggregated totals:
// grouped budgets sum their linked categories, subcategory budgets read
// the narrowed map, plain category budgets read the category map.
func spentFor(b *domain.Budget, groupCategoryIDs []int32, totals *SpendTotals) decimal.Decimal {
	switch {
	case b.GroupID != nil:
		spent := decimal.Zero
		for _, categoryID := range groupCategoryIDs {
			spent = spent.Add(totals.CategorySpend(categoryID))
		}
		return spent
	case b.SubcategoryID != nil:
		return totals.SubcategorySpend(*b.CategoryID, *b.SubcategoryID)
	default:
		return totals.CategorySpend(*b.CategoryID)
	}
}

func (s *BudgetQueryService) loadGroupLinks(budgets []*domain.Budget) (map[int32][]int32, error) {
	var groupedIDs []int32
	for _, b := range budgets {
		if b.GroupID != nil {
			groupedIDs = append(groupedIDs, b.ID)
		}
	}
	linksByBudget := make(map[int32][]int32)
	if len(groupedIDs) == 0 {
		return linksByBudget, nil
	}

	links, err := s.budgetRepo.ListLinks(groupedIDs)
	if err != nil {
		return nil, fmt.Errorf("load category links: %w", err)
	}
	for _, link := range links {
		linksByBudget[link.BudgetID] = append(linksByBudget[link.BudgetID], link.CategoryID)
	}
	return linksByBudget, nil
}

type displayNames struct {
	categories    map[int32]string
	subcategories map[int32]string
	groups        map[int32]string
}

// displayNameFor resolves the label shown for a budget: the group's name
// for grouped budgets, else the category's (with the subcategory appended
// when the budget is narrowed)
func (n *displayNames) displayNameFor(b *domain.Budget) string {
	if b.GroupID != nil {
		return n.groups[*b.GroupID]
	}
	name := n.categories[*b.CategoryID]
	if b.SubcategoryID != nil {
		if sub, ok := n.subcategories[*b.SubcategoryID]; ok {
			name = fmt.Sprintf("%s / %s", name, sub)
		}
	}
	return name
}

func (s *BudgetQueryService) loadDisplayNames(workspaceID int32) (*displayNames, error) {
	categories, err := s.categoryRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	subcategories, err := s.subcategoryRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load subcategories: %w", err)
	}
	groups, err := s.groupRepo.GetAllByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load budget groups: %w", err)
	}

	names := &displayNames{
		categories:    make(map[int32]string, len(categories)),
		subcategories: make(map[int32]string, len(subcategories)),
		groups:        make(map[int32]string, len(groups)),
	}
	for _, c := range categories {
		names.categories[c.ID] = c.Name
	}
	for _, sc := range subcategories {
		names.subcategories[sc.ID] = sc.Name
	}
	for _, g := range groups {
		names.groups[g.ID] = g.Name
	}
	return names, nil
}
