package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/logger"
)

// DataRepository persists prediction logs and may supply the zone table
type DataRepository = domain.DataRepository

// ForecastService serves predictions to the API and records them
type ForecastService struct {
	engine   *PredictionEngine
	registry *ZoneRegistry
	repo     DataRepository
	log      logger.Logger

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewForecastService creates a new forecast service
func NewForecastService(
	engine *PredictionEngine,
	registry *ZoneRegistry,
	repo DataRepository,
	log logger.Logger,
) *ForecastService {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &ForecastService{
		engine:   engine,
		registry: registry,
		repo:     repo,
		log:      log,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *ForecastService) WaitBackground() {
	s.wgBg.Wait()
}

// ModelName returns the serving model's name, or "" in fallback-only mode
func (s *ForecastService) ModelName() string {
	return s.engine.ModelName()
}

// Forecast predicts one zone, degrading to the zone average without a model
func (s *ForecastService) Forecast(ctx context.Context, zoneID int, target time.Time) (domain.Prediction, error) {
	p, err := s.engine.PredictWithFallback(ctx, zoneID, target)
	if err != nil {
		return domain.Prediction{}, err
	}
	s.persist([]domain.Prediction{p})
	return p, nil
}

// Overview predicts every registered zone concurrently. Zones that fail are
// logged and left out; the result is ordered by zone id.
func (s *ForecastService) Overview(ctx context.Context, target time.Time) ([]domain.Prediction, error) {
	zones := s.registry.Zones()
	var (
		slots = make([]*domain.Prediction, len(zones))
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
	)

	for i, z := range zones {
		wg.Add(1)
		go func(i int, z domain.Zone) {
			defer wg.Done()
			p, err := s.engine.PredictWithFallback(ctx, z.ID, target)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			slots[i] = &p
		}(i, z)
	}
	wg.Wait()

	// Log any errors that occurred
	for _, err := range errs {
		s.log.Warnf("overview prediction error: %v", err)
	}

	out := make([]domain.Prediction, 0, len(zones))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s.persist(out)
	return out, nil
}

// persist saves prediction logs asynchronously (tracked for graceful shutdown)
func (s *ForecastService) persist(preds []domain.Prediction) {
	if s.repo == nil || len(preds) == 0 {
		return
	}
	now := time.Now().UTC()
	entries := make([]domain.PredictionLog, len(preds))
	for i, p := range preds {
		entries[i] = domain.PredictionLog{
			ID:            uuid.NewString(),
			ZoneID:        p.Zone.ID,
			ZoneCode:      p.Zone.Code,
			Target:        p.Target,
			Rate:          p.Rate,
			Confidence:    p.Confidence,
			FallbackRatio: p.FallbackRatio,
			IsFallback:    p.IsFallback,
			CreatedAt:     now,
		}
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, e := range entries {
			if err := s.repo.SavePredictionLog(bgCtx, e); err != nil {
				s.log.Errorf("Failed to save prediction log: %v", err)
			}
		}
	}()
}
