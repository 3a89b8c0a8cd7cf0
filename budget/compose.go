package budget

import "fmt"

// =============================================================================
// PATTERN COMPOSER - One occurrence stream per budget line
// =============================================================================

// Compose resolves a budget line's pattern list into one occurrence stream
// for the window: the concatenation of each intersecting pattern's
// expansion, in pattern order. There is no cross-pattern deduplication;
// overlapping seasonal patterns contribute independently.
func (e *Expander) Compose(line BudgetLine, w Window) ([]Occurrence, error) {
	if !w.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, w)
	}

	var occurrences []Occurrence
	for i, pattern := range line.Patterns {
		if !pattern.Intersects(w) {
			continue
		}
		expanded, err := e.Expand(pattern, w)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		occurrences = append(occurrences, expanded...)
	}
	return occurrences, nil
}
