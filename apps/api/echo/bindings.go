package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/devtracker/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads "?ordering=name,-created_at" ("-" for descending).
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// intRange is an integer query param with its default & inclusive bounds.
type intRange struct {
	name     string
	def      int
	min, max int
	errMsg   string
}

var (
	daysParam      = intRange{name: "days", def: 7, min: 1, max: 365, errMsg: "Days parameter must be between 1 and 365"}
	limitParam     = intRange{name: "limit", def: 10, min: 1, max: 100, errMsg: "Limit parameter must be between 1 and 100"}
	teamDaysParam  = intRange{name: "days", def: 30, min: 1, max: 365, errMsg: "Days parameter must be between 1 and 365"}
	teamLimitParam = intRange{name: "limit", def: 100, min: 1, max: 100, errMsg: "Limit parameter must be between 1 and 100"}
	pageParam      = intRange{name: "page", def: 1, min: 1, max: 1 << 20, errMsg: "Page parameter must be a positive number"}
)

func (r intRange) Bind(ctx echo.Context) (int, error) {
	raw := strings.TrimSpace(ctx.QueryParam(r.name))
	if raw == "" {
		return r.def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < r.min || n > r.max {
		return 0, core.NewValidationMessage(r.errMsg)
	}
	return n, nil
}

func boolParam(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

func dateParam(ctx echo.Context, name string) (core.Date, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, core.NewValidationError(err, core.FieldError{Field: name, Error: err.Error()})
	}
	return d, nil
}
