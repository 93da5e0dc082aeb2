package core

// DBOrdering is one "ORDER BY" term.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FilterOrderings keeps the orderings whose field is allowed, mapping API names to columns.
func FilterOrderings(orderings []DBOrdering, allowed map[string]string) []DBOrdering {
	filtered := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := allowed[ord.Field]; ok {
			filtered = append(filtered, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return filtered
}

// Page is a limit/offset window over query results.
type Page struct {
	Limit  int
	Offset int
}

// NewPage builds the Page for a 1-based page number.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	return Page{Limit: size, Offset: (number - 1) * size}
}
