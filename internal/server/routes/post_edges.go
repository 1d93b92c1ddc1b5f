package routes

import (
	"context"
	"errors"
	"net/http"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

type edgeReviewResponse struct {
	Message string            `json:"message"`
	Edge    *db.SuggestedEdge `json:"edge,omitempty"`
}

// ApproveEdgeHandler materializes a pending suggestion as a real graph
// edge.
func ApproveEdgeHandler(c echo.Context) error {
	return reviewEdge(c, func(ctx context.Context, r *importer.EdgeReviewer, id int64) (db.SuggestedEdge, error) {
		return r.Approve(ctx, id)
	}, "Suggestion approved")
}

// RejectEdgeHandler marks a pending suggestion as rejected without
// touching the graph.
func RejectEdgeHandler(c echo.Context) error {
	return reviewEdge(c, func(ctx context.Context, r *importer.EdgeReviewer, id int64) (db.SuggestedEdge, error) {
		return r.Reject(ctx, id)
	}, "Suggestion rejected")
}

// ResetEdgeHandler returns a reviewed suggestion to pending, removing
// the graph edge a previous approval created.
func ResetEdgeHandler(c echo.Context) error {
	return reviewEdge(c, func(ctx context.Context, r *importer.EdgeReviewer, id int64) (db.SuggestedEdge, error) {
		return r.Reset(ctx, id)
	}, "Suggestion reset")
}

func reviewEdge(
	c echo.Context,
	op func(ctx context.Context, r *importer.EdgeReviewer, id int64) (db.SuggestedEdge, error),
	message string,
) error {
	type edgeReviewParams struct {
		EdgeID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(edgeReviewParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, edgeReviewResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, edgeReviewResponse{
			Message: "Invalid request params",
		})
	}

	conn := c.(*middleware.AppContext).App.DBConn
	reviewer := importer.NewEdgeReviewer(importer.NewPgStore(conn))

	edge, err := op(c.Request().Context(), reviewer, params.EdgeID)
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
		if errors.Is(err, importer.ErrNoLinkedNode) || errors.Is(err, importer.ErrNoTargetNode) {
			return c.JSON(http.StatusConflict, edgeReviewResponse{
				Message: "Suggestion no longer has a valid node pair",
			})
		}
		return c.JSON(http.StatusInternalServerError, edgeReviewResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, edgeReviewResponse{
		Message: message,
		Edge:    &edge,
	})
}
