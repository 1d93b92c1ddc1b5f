package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/queue"
	"beleidsgraaf/internal/server/middleware"
	"beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/leaselock"
	"beleidsgraaf/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunImportHandler runs an import cycle synchronously for the requested
// item types and returns the per-type summaries. Each type runs under
// its own lease, a type whose cycle is already running elsewhere is
// reported as busy instead of running twice.
func RunImportHandler(c echo.Context) error {
	type runImportData struct {
		ItemTypes []string   `json:"item_types" validate:"required,min=1,dive,oneof=motion written_question commitment"`
		Since     *time.Time `json:"since"`
		Limit     int        `json:"limit" validate:"omitempty,min=1,max=500"`
	}

	type runImportResponse struct {
		Message   string                 `json:"message"`
		Summaries []importer.CycleSummary `json:"summaries,omitempty"`
		Busy      []string               `json:"busy,omitempty"`
	}

	data := new(runImportData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, runImportResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, runImportResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	limit := data.Limit
	if limit <= 0 {
		limit = int(util.GetEnvNumeric("IMPORT_FETCH_LIMIT", 50))
	}

	orch := queue.NewOrchestrator(app.DBConn, app.S3, app.Extractor, app.Queue)
	locks := leaselock.New(app.DBConn)

	var summaries []importer.CycleSummary
	var busy []string
	for _, itemType := range data.ItemTypes {
		strat, err := queue.StrategyFromEnv(itemType)
		if err != nil {
			return c.JSON(http.StatusBadRequest, runImportResponse{
				Message: "Unknown item type " + itemType,
			})
		}

		err = locks.WithLease(ctx, "import_"+itemType, queue.CycleLockOptions(), func(ctx context.Context) error {
			summary, err := orch.RunCycle(ctx, strat, data.Since, limit)
			if err != nil {
				return err
			}
			summaries = append(summaries, summary)
			return nil
		})
		if errors.Is(err, leaselock.ErrBusy) {
			busy = append(busy, itemType)
			continue
		}
		if err != nil {
			logger.Error("[Import] Cycle failed", "type", itemType, "err", err)
			return c.JSON(http.StatusInternalServerError, runImportResponse{
				Message: "Import cycle failed for type " + itemType,
			})
		}
	}

	return c.JSON(http.StatusOK, runImportResponse{
		Message:   "Import finished",
		Summaries: summaries,
		Busy:      busy,
	})
}

// QueueImportHandler publishes an import trigger for the worker instead
// of running the cycle in the request.
func QueueImportHandler(c echo.Context) error {
	type queueImportData struct {
		ItemTypes []string   `json:"item_types" validate:"required,min=1,dive,oneof=motion written_question commitment"`
		Since     *time.Time `json:"since"`
		Limit     int        `json:"limit" validate:"omitempty,min=1,max=500"`
	}

	type queueImportResponse struct {
		Message string `json:"message"`
	}

	data := new(queueImportData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queueImportResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queueImportResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App

	msg := queue.QueueImportMsg{
		Message:   "import",
		ItemTypes: data.ItemTypes,
		Since:     data.Since,
		Limit:     data.Limit,
	}
	if err := queue.PublishFIFO(app.Queue, queue.ImportQueue, []byte(util.ConvertStructToJson(msg))); err != nil {
		logger.Error("[Import] Failed to queue import", "err", err)
		return c.JSON(http.StatusInternalServerError, queueImportResponse{
			Message: "Failed to queue import",
		})
	}

	return c.JSON(http.StatusAccepted, queueImportResponse{
		Message: "Import queued",
	})
}
