package service

import (
	"errors"
	"fmt"

	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// BudgetPropagationService materializes recurring budgets into periods on
// demand. For every scope key that has at least one recurring budget in a
// period before the target, the most recent configuration is copied into
// the target period unless a budget for that scope already exists there.
type BudgetPropagationService struct {
	budgetRepo domain.BudgetRepository
}

// NewBudgetPropagationService creates a new BudgetPropagationService
func NewBudgetPropagationService(budgetRepo domain.BudgetRepository) *BudgetPropagationService {
	return &BudgetPropagationService{budgetRepo: budgetRepo}
}

// EnsureForPeriod guarantees the target period carries a budget for every
// scope key with a recurring predecessor. Propagation is strictly
// forward: intervening gap months are not backfilled. The operation is
// idempotent; a second call for the same period finds no gaps.
//
// When a concurrent caller materializes the same period first, the batch
// insert fails on the uniqueness constraint; the gap set is recomputed
// once and a repeat violation is accepted as "already created".
func (s *BudgetPropagationService) EnsureForPeriod(workspaceID int32, target domain.Period) error {
	inserted, err := s.fillGaps(workspaceID, target)
	if errors.Is(err, domain.ErrBudgetAlreadyExists) {
		// Lost a race against a concurrent request for this period.
		// Recompute the remaining gaps against the fresh state.
		_, err = s.fillGaps(workspaceID, target)
		if errors.Is(err, domain.ErrBudgetAlreadyExists) {
			return nil
		}
	}
	if err != nil {
		return err
	}

	if inserted > 0 {
		log.Debug().
			Int32("workspace_id", workspaceID).
			Str("period", target.String()).
			Int("count", inserted).
			Msg("Materialized recurring budgets")
	}
	return nil
}

func (s *BudgetPropagationService) fillGaps(workspaceID int32, target domain.Period) (int, error) {
	recurring, err := s.budgetRepo.ListRecurringBefore(workspaceID, target)
	if err != nil {
		return 0, fmt.Errorf("load recurring budgets before %s: %w", target, err)
	}
	if len(recurring) == 0 {
		return 0, nil
	}

	// One entry per scope key, keeping the most recent period. The repo
	// returns rows most recent first, so the first hit wins.
	latest := make(map[domain.ScopeKey]*domain.Budget)
	for _, b := range recurring {
		key := b.Scope()
		if _, seen := latest[key]; !seen {
			latest[key] = b
		}
	}

	existing, err := s.budgetRepo.ListByPeriod(workspaceID, target)
	if err != nil {
		return 0, fmt.Errorf("load budgets at %s: %w", target, err)
	}
	present := make(map[domain.ScopeKey]struct{}, len(existing))
	for _, b := range existing {
		present[b.Scope()] = struct{}{}
	}

	var sources []*domain.Budget
	for key, src := range latest {
		if _, ok := present[key]; !ok {
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		return 0, nil
	}

	// Grouped sources need their category links copied to the new rows
	var groupedIDs []int32
	for _, src := range sources {
		if src.GroupID != nil {
			groupedIDs = append(groupedIDs, src.ID)
		}
	}
	linksBySource := make(map[int32][]int32)
	if len(groupedIDs) > 0 {
		links, err := s.budgetRepo.ListLinks(groupedIDs)
		if err != nil {
			return 0, fmt.Errorf("load category links: %w", err)
		}
		for _, link := range links {
			linksBySource[link.BudgetID] = append(linksBySource[link.BudgetID], link.CategoryID)
		}
	}

	drafts := make([]*domain.BudgetDraft, 0, len(sources))
	for _, src := range sources {
		drafts = append(drafts, &domain.BudgetDraft{
			Budget: &domain.Budget{
				WorkspaceID:   workspaceID,
				Period:        target,
				Amount:        src.Amount,
				CategoryID:    src.CategoryID,
				SubcategoryID: src.SubcategoryID,
				GroupID:       src.GroupID,
				IsRecurring:   true,
			},
			CategoryIDs: linksBySource[src.ID],
		})
	}

	if err := s.budgetRepo.InsertBatch(drafts); err != nil {
		return 0, err
	}
	return len(drafts), nil
}
