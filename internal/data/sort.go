package data

// NextSort returns the sort to apply after the user activates column.
// Clicking the sorted column flips its order; any other column starts ascending.
func NextSort(current *SortState, column string) *SortState {
	if current == nil || current.Column != column {
		return &SortState{Column: column, Order: Ascending}
	}

	next := &SortState{Column: column}
	switch current.Order {
	case Ascending:
		next.Order = Descending
	default:
		// NotSorted and Descending both move to Ascending.
		next.Order = Ascending
	}
	return next
}

// SortFor returns the state a column header should display.
func SortFor(current *SortState, column string) SortState {
	if current != nil && current.Column == column {
		return *current
	}
	return SortState{Column: column, Order: NotSorted}
}

// Label renders the column name with a sort indicator.
func (s SortState) Label() string {
	switch s.Order {
	case Ascending:
		return "⏶ " + s.Column
	case Descending:
		return "⏷ " + s.Column
	default:
		return "↕ " + s.Column
	}
}

// Active reports whether s actually orders the data.
func (s *SortState) Active() bool {
	return s != nil && s.Order != NotSorted
}
