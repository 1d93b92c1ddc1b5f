package routes

import (
	"context"
	"errors"
	"net/http"

	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/queue"
	"beleidsgraaf/internal/server/middleware"
	"beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/leaselock"
	"beleidsgraaf/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReprocessHandler reruns matching for unresolved items of one type.
// With async set the batch is handed to the worker instead.
func ReprocessHandler(c echo.Context) error {
	type reprocessData struct {
		ItemType string `json:"item_type" validate:"required,oneof=motion written_question commitment"`
		Async    bool   `json:"async"`
	}

	type reprocessResponse struct {
		Message string                     `json:"message"`
		Summary *importer.ReprocessSummary `json:"summary,omitempty"`
	}

	data := new(reprocessData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, reprocessResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, reprocessResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App

	if data.Async {
		msg := queue.QueueReprocessMsg{
			Message:  "reprocess",
			ItemType: data.ItemType,
		}
		if err := queue.PublishFIFO(app.Queue, queue.ReprocessQueue, []byte(util.ConvertStructToJson(msg))); err != nil {
			logger.Error("[Reprocess] Failed to queue reprocess", "err", err)
			return c.JSON(http.StatusInternalServerError, reprocessResponse{
				Message: "Failed to queue reprocess",
			})
		}
		return c.JSON(http.StatusAccepted, reprocessResponse{
			Message: "Reprocess queued",
		})
	}

	strat, err := queue.StrategyFromEnv(data.ItemType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, reprocessResponse{
			Message: "Unknown item type " + data.ItemType,
		})
	}

	orch := queue.NewOrchestrator(app.DBConn, app.S3, app.Extractor, app.Queue)
	locks := leaselock.New(app.DBConn)

	var summary importer.ReprocessSummary
	err = locks.WithLease(c.Request().Context(), "import_"+data.ItemType, queue.CycleLockOptions(), func(ctx context.Context) error {
		s, err := orch.Reprocess(ctx, strat)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if errors.Is(err, leaselock.ErrBusy) {
		return c.JSON(http.StatusConflict, reprocessResponse{
			Message: "A cycle for this item type is already running",
		})
	}
	if err != nil {
		logger.Error("[Reprocess] Batch failed", "type", data.ItemType, "err", err)
		return c.JSON(http.StatusInternalServerError, reprocessResponse{
			Message: "Reprocess failed",
		})
	}

	message := "Reprocess finished"
	if summary.NoLLM {
		message = "Reprocess aborted, extraction backend unavailable"
	}
	return c.JSON(http.StatusOK, reprocessResponse{
		Message: message,
		Summary: &summary,
	})
}
