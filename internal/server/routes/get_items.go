package routes

import (
	"net/http"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetItemsHandler(c echo.Context) error {
	type getItemsParams struct {
		Status   string `query:"status" validate:"omitempty,oneof=pending imported out_of_scope reviewed rejected"`
		ItemType string `query:"type" validate:"omitempty,oneof=motion written_question commitment"`
		Limit    int32  `query:"limit" validate:"omitempty,min=1,max=200"`
		Offset   int32  `query:"offset" validate:"omitempty,min=0"`
	}

	params := new(getItemsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if params.Limit == 0 {
		params.Limit = 50
	}

	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	items, err := q.ListImportedItems(c.Request().Context(), db.ListImportedItemsParams{
		Status:   params.Status,
		ItemType: params.ItemType,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, items)
}

func GetItemHandler(c echo.Context) error {
	type getItemParams struct {
		ItemID int64 `param:"id" validate:"required,numeric"`
	}

	type getItemResponse struct {
		Item           db.ImportedItem    `json:"item"`
		SuggestedEdges []db.SuggestedEdge `json:"suggested_edges"`
	}

	params := new(getItemParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	item, err := q.GetImportedItem(ctx, params.ItemID)
	if err != nil {
		if db.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	edges, err := q.ListSuggestedEdgesByItem(ctx, item.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, getItemResponse{
		Item:           item,
		SuggestedEdges: edges,
	})
}
