package evalctl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/stats"
	"github.com/okian/breedgrade/pkg/logger"
)

// ErrVerification is returned when the service disagrees with what was submitted.
var ErrVerification = errors.New("verification failed")

// Seed generates cfg.Count evaluations, submits them concurrently, then
// checks the count and mean the service reports.
func Seed(ctx context.Context, client *Client, cfg SeedConfig) (SeedReport, error) {
	rep := SeedReport{StartTime: time.Now()}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	logger.Get().Info(ctx, "starting seed run",
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	if err := client.Health(ctx); err != nil {
		return rep, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := client.Stats(ctx)
	if err != nil {
		return rep, fmt.Errorf("read stats: %w", err)
	}
	rep.Before = before

	inputs := Generate(cfg.Count, cfg.Seed)
	rep.Generated = len(inputs)

	submit(ctx, client, cfg.Workers, inputs, &rep)
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("seed interrupted: %w", err)
	}

	if err := verify(ctx, client, &rep); err != nil {
		return rep, err
	}

	rep.EndTime = time.Now()
	rep.Duration = rep.EndTime.Sub(rep.StartTime)
	logger.Get().Info(ctx, "seed run completed",
		logger.Int("successful", rep.Successful),
		logger.Int("rejected", rep.Rejected),
		logger.Int("failed", rep.Failed),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

// submit posts inputs with a pool of workers.
func submit(ctx context.Context, client *Client, workers int, inputs []model.Input, rep *SeedReport) {
	var (
		successful int64
		rejected   int64
		failed     int64
		submitted  int64
	)

	jobs := make(chan model.Input, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range jobs {
				_, err := client.Submit(ctx, in)
				atomic.AddInt64(&submitted, 1)

				var apiErr *APIError
				switch {
				case err == nil:
					atomic.AddInt64(&successful, 1)
				case errors.As(err, &apiErr) && apiErr.Status < 500:
					atomic.AddInt64(&rejected, 1)
					logger.Get().Warn(ctx, "submission rejected",
						logger.String("dogName", in.DogName), logger.Error(err))
				default:
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "submission failed",
						logger.String("dogName", in.DogName), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, in := range inputs {
			select {
			case <-ctx.Done():
				return
			case jobs <- in:
			}
		}
	}()

	wg.Wait()

	rep.Submitted = int(atomic.LoadInt64(&submitted))
	rep.Successful = int(atomic.LoadInt64(&successful))
	rep.Rejected = int(atomic.LoadInt64(&rejected))
	rep.Failed = int(atomic.LoadInt64(&failed))
}

// verify checks that the stored count grew by the number of successful
// submissions and, when the whole collection can be listed, that the mean
// recomputed from the list matches the service's.
func verify(ctx context.Context, client *Client, rep *SeedReport) error {
	after, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	rep.After = after

	if grew := after.Total - rep.Before.Total; grew != rep.Successful {
		return fmt.Errorf("%w: total grew by %d, expected %d", ErrVerification, grew, rep.Successful)
	}
	if after.Total == 0 {
		return nil
	}

	list, err := client.List(ctx, after.Total)
	if err != nil {
		return fmt.Errorf("list evaluations: %w", err)
	}
	if len(list) < after.Total {
		logger.Get().Warn(ctx, "list is capped by the server; skipping mean check",
			logger.Int("listed", len(list)), logger.Int("total", after.Total))
		return nil
	}

	percentages := make([]int, len(list))
	for i, e := range list {
		percentages[i] = e.Percentage
	}
	local := stats.Summarize(percentages)
	rep.MeanChecked = true
	rep.LocalMean = local.AvgScore
	if local.AvgScore != after.AvgScore {
		return fmt.Errorf("%w: service average %.1f, recomputed %.1f", ErrVerification, after.AvgScore, local.AvgScore)
	}
	return nil
}
