package potluck

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/models"
)

// Form returns the staged form.
func (s *State) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// FormMessage returns the outcome of the last submission.
func (s *State) FormMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formMsg
}

// SetName stages the participant name.
func (s *State) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Name = name
}

// SetDish stages the dish name.
func (s *State) SetDish(dish string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Dish = dish
}

// SelectCategory stages a category. Only available categories can be
// selected; the staged quantity is re-clamped to the new bound.
func (s *State) SelectCategory(category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summarize(s.categories, s.entries)
	if !slices.Contains(AvailableCategories(summary), category) {
		return ErrCategoryUnavailable
	}
	s.form.Category = category
	s.form.Quantity = ClampQuantity(s.form.Quantity, QuantityBound(summary, category))
	return nil
}

// SetQuantity stages a quantity, clamped to [1, remaining] for the
// selected category. It returns the staged value.
func (s *State) SetQuantity(q int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summarize(s.categories, s.entries)
	s.form.Quantity = ClampQuantity(q, QuantityBound(summary, s.form.Category))
	return s.form.Quantity
}

// SetForm stages every field at once. An unavailable category leaves the
// current selection in place and returns ErrCategoryUnavailable after the
// other fields are staged.
func (s *State) SetForm(f Form) error {
	s.SetName(f.Name)
	s.SetDish(f.Dish)

	var err error
	if f.Category != "" {
		err = s.SelectCategory(f.Category)
	}
	s.SetQuantity(f.Quantity)
	return err
}

// Submit sends the staged form to the backend.
//
// The quantity is clamped to the remaining capacity before sending. On
// success the name, dish and quantity are cleared, the category is kept and
// the entry list is re-fetched. The returned error is nil on success even if
// the re-fetch fails.
func (s *State) Submit(ctx context.Context) error {
	s.mu.Lock()
	s.formMsg = ""
	entry, err := s.validateLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.form.Quantity = entry.Quantity
	s.mu.Unlock()

	err = s.backend.Submit(ctx, entry)

	s.mu.Lock()
	if err != nil {
		s.formMsg = submitFailureMessage(err)
		s.mu.Unlock()
		s.logger.Info("entry rejected", "category", entry.Category, "error", err)
		return err
	}
	s.formMsg = MsgSaved
	s.form.Name = ""
	s.form.Dish = ""
	s.form.Quantity = 1
	s.mu.Unlock()

	s.logger.Info("entry saved", "category", entry.Category, "quantity", entry.Quantity)
	_ = s.Load(ctx)
	return nil
}

// validateLocked checks the staged form and returns the entry to send.
func (s *State) validateLocked() (models.Entry, error) {
	name := strings.TrimSpace(s.form.Name)
	dish := strings.TrimSpace(s.form.Dish)
	if name == "" {
		return models.Entry{}, ErrNameRequired
	}
	if dish == "" {
		return models.Entry{}, ErrDishRequired
	}

	summary := Summarize(s.categories, s.entries)
	if !slices.Contains(AvailableCategories(summary), s.form.Category) {
		return models.Entry{}, ErrCategoryUnavailable
	}

	return models.Entry{
		Name:     name,
		Category: s.form.Category,
		Dish:     dish,
		Quantity: ClampQuantity(s.form.Quantity, QuantityBound(summary, s.form.Category)),
	}, nil
}

func submitFailureMessage(err error) string {
	if errors.Is(err, backend.ErrNetwork) {
		return MsgNetworkError
	}
	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return MsgSaveFailed
}
