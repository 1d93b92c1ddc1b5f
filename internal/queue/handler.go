package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"beleidsgraaf/internal/importer"
	"beleidsgraaf/internal/storage"
	"beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/leaselock"
	"beleidsgraaf/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// zaakSoorten maps item types to the Zaak soort filter used upstream.
var zaakSoorten = map[string]string{
	importer.ItemTypeMotion:          "Motie",
	importer.ItemTypeWrittenQuestion: "Schriftelijke vragen",
	importer.ItemTypeCommitment:      "Toezegging",
}

// CycleLockOptions guards pipeline cycles. Leases renew well inside the
// TTL so a slow upstream fetch does not lose the lock.
func CycleLockOptions() leaselock.Options {
	return leaselock.Options{
		TTL:        2 * time.Minute,
		RenewEvery: 30 * time.Second,
	}
}

// ProcessImportMessage runs one import cycle per requested item type.
// Each type runs under its own lease so concurrently triggered cycles
// for the same type serialize; a busy lease skips the type, the next
// trigger will catch up.
func ProcessImportMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	extractor importer.Extractor,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueImportMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if len(data.ItemTypes) == 0 {
		logger.Warn("[Queue] Import message without item types, nothing to do")
		return nil
	}
	limit := data.Limit
	if limit <= 0 {
		limit = int(util.GetEnvNumeric("IMPORT_FETCH_LIMIT", 50))
	}

	orch := NewOrchestrator(conn, s3Client, extractor, ch)
	locks := leaselock.New(conn)

	var errs []error
	for _, itemType := range data.ItemTypes {
		strat, err := StrategyFromEnv(itemType)
		if err != nil {
			logger.Error("[Queue] Skipping unknown item type", "type", itemType, "err", err)
			continue
		}
		err = locks.WithLease(ctx, "import_"+itemType, CycleLockOptions(), func(ctx context.Context) error {
			summary, err := orch.RunCycle(ctx, strat, data.Since, limit)
			if err != nil {
				return err
			}
			logger.Info("[Queue] Import cycle finished",
				"type", summary.ItemType,
				"fetched", summary.Fetched,
				"imported", summary.Imported,
				"skipped", summary.Skipped,
				"pending", summary.Pending,
				"out_of_scope", summary.OutOfScope,
				"failed", summary.Failed,
			)
			return nil
		})
		if errors.Is(err, leaselock.ErrBusy) {
			logger.Info("[Queue] Import cycle already running, skipping", "type", itemType)
			continue
		}
		if err != nil {
			logger.Error("[Queue] Import cycle failed", "type", itemType, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", itemType, err))
		}
	}
	return errors.Join(errs...)
}

// ProcessReprocessMessage reruns matching for unresolved items of one
// type.
func ProcessReprocessMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	extractor importer.Extractor,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueReprocessMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	strat, err := importer.StrategyFor(data.ItemType)
	if err != nil {
		logger.Error("[Queue] Dropping reprocess message for unknown item type", "type", data.ItemType)
		return nil
	}

	orch := NewOrchestrator(conn, s3Client, extractor, ch)
	locks := leaselock.New(conn)

	err = locks.WithLease(ctx, "import_"+data.ItemType, CycleLockOptions(), func(ctx context.Context) error {
		summary, err := orch.Reprocess(ctx, strat)
		if err != nil {
			return err
		}
		if summary.NoLLM {
			logger.Error("[Queue] Reprocessing aborted, extraction capability unavailable",
				"type", summary.ItemType, "total", summary.Total)
			return nil
		}
		logger.Info("[Queue] Reprocessing finished",
			"type", summary.ItemType,
			"total", summary.Total,
			"matched", summary.Matched,
			"out_of_scope", summary.OutOfScope,
			"skipped", summary.Skipped,
		)
		return nil
	})
	if errors.Is(err, leaselock.ErrBusy) {
		logger.Info("[Queue] Import cycle running for type, deferring reprocess", "type", data.ItemType)
		return err
	}
	return err
}

// NewOrchestrator builds the production pipeline over the shared
// connections.
func NewOrchestrator(conn *pgxpool.Pool, s3Client *awss3.Client, extractor importer.Extractor, ch *amqp091.Channel) *importer.Orchestrator {
	return importer.NewOrchestrator(importer.NewPgStore(conn), importer.OrchestratorParams{
		Extractor:        extractor,
		Notifier:         NewAmqpNotifier(ch),
		Archiver:         storage.NewArchive(s3Client),
		TaskDeadlineDays: int(util.GetEnvNumeric("REVIEW_TASK_DEADLINE_DAYS", importer.DefaultTaskDeadlineDays)),
	})
}

// StrategyFromEnv wires a strategy to its upstream source client.
func StrategyFromEnv(itemType string) (importer.Strategy, error) {
	soort, ok := zaakSoorten[itemType]
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
	source := newSourceClient(soort)
	return importer.StrategyFor(itemType, source)
}
