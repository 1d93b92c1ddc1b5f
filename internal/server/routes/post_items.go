package routes

import (
	"errors"
	"net/http"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// ReopenItemHandler moves a rejected or out of scope item back to
// imported so its suggestions can be reviewed again.
func ReopenItemHandler(c echo.Context) error {
	type reopenItemParams struct {
		ItemID int64 `param:"id" validate:"required,numeric"`
	}

	type reopenItemResponse struct {
		Message string           `json:"message"`
		Item    *db.ImportedItem `json:"item,omitempty"`
	}

	params := new(reopenItemParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, reopenItemResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, reopenItemResponse{
			Message: "Invalid request params",
		})
	}

	conn := c.(*middleware.AppContext).App.DBConn
	reviewer := importer.NewEdgeReviewer(importer.NewPgStore(conn))

	item, err := reviewer.Reopen(c.Request().Context(), params.ItemID)
	if err != nil {
		if db.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, reopenItemResponse{
				Message: "Item not found",
			})
		}
		if errors.Is(err, importer.ErrCannotReopen) {
			return c.JSON(http.StatusConflict, reopenItemResponse{
				Message: "Item cannot be reopened from its current status",
			})
		}
		return c.JSON(http.StatusInternalServerError, reopenItemResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, reopenItemResponse{
		Message: "Item reopened",
		Item:    &item,
	})
}
