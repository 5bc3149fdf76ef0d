package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

const (
	reportKeyPrefix = "report:"
	reportIndexKey  = "reports"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	ListLatest(ctx context.Context, limit int64) ([]*entity.Report, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbReport struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportRepository - reports expire after ttl, 0 keeps them forever.
func NewReportRepository(client *redis.Client, ttl time.Duration) ReportRepository {
	return &dbReport{
		client: client,
		ttl:    ttl,
	}
}

func reportKey(id string) string {
	return reportKeyPrefix + id
}

func (that *dbReport) Create(ctx context.Context, report *entity.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not marshal report: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, reportKey(report.ID), reportJSON, that.ttl)
		pipe.ZAdd(ctx, reportIndexKey, redis.Z{
			Score:  float64(report.CreatedAt.UnixNano()),
			Member: report.ID,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}

	return nil
}

func (that *dbReport) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	response, err := that.client.Get(ctx, reportKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrReportNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}

	var report entity.Report
	if err = json.Unmarshal([]byte(response), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// ListLatest - newest reports first. Expired reports are dropped from the index as they are met.
func (that *dbReport) ListLatest(ctx context.Context, limit int64) ([]*entity.Report, error) {
	if limit <= 0 {
		return []*entity.Report{}, nil
	}

	ids, err := that.client.ZRevRange(ctx, reportIndexKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]*entity.Report, 0, len(ids))
	for _, id := range ids {
		report, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrReportNotFound) {
			if err = that.client.ZRem(ctx, reportIndexKey, id).Err(); err != nil {
				return nil, fmt.Errorf("failed to drop expired report: %w", err)
			}

			continue
		}

		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func (that *dbReport) DeleteByID(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, reportKey(id))
		pipe.ZRem(ctx, reportIndexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete report by ID: %w", err)
	}

	if deleted.Val() == 0 {
		return apperror.ErrReportNotFound
	}

	return nil
}
