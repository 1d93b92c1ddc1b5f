package routes

import (
	"errors"
	"net/http"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// EditEdgeHandler changes the relation type of a pending suggestion.
func EditEdgeHandler(c echo.Context) error {
	type editEdgeData struct {
		EdgeID   int64  `param:"id" validate:"required,numeric"`
		EdgeType string `json:"edge_type" validate:"required,oneof=addresses questions fulfills relates_to"`
	}

	data := new(editEdgeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, edgeReviewResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, edgeReviewResponse{
			Message: "Invalid request params",
		})
	}

	conn := c.(*middleware.AppContext).App.DBConn
	reviewer := importer.NewEdgeReviewer(importer.NewPgStore(conn))

	edge, err := reviewer.UpdateEdgeType(c.Request().Context(), data.EdgeID, data.EdgeType)
	if err != nil {
		if db.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, edgeReviewResponse{
				Message: "Suggested edge not found",
			})
		}
		if errors.Is(err, importer.ErrNotPending) {
			return c.JSON(http.StatusConflict, edgeReviewResponse{
				Message: "Suggested edge was already reviewed",
			})
		}
		return c.JSON(http.StatusInternalServerError, edgeReviewResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, edgeReviewResponse{
		Message: "Suggestion updated",
		Edge:    &edge,
	})
}
