package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aykutjm/ogrencim/core"
)

var orderingParam = "ordering"

// Ordering binds the `ordering` query param: a comma separated list of fields, "-" prefixed for DESC.
type Ordering struct {
	Orderings []core.DBOrdering
}

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
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)
