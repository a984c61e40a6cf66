package services

import (
	"errors"
	"fmt"
	"sync"

	"nodup/internal/models"
	"nodup/internal/providers"
	"nodup/internal/storage"
)

// CounterServiceInterface counts repeat posts per (scope, user).
type CounterServiceInterface interface {
	Increment(scope, userID, displayName string) (int64, error)
	Get(scope, userID string) (*models.UserCounterRecord, error)
	Scan(scope string) ([]*models.UserCounterRecord, error)
}

type CounterService struct {
	mu      sync.Mutex
	kv      storage.KVInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewCounterService(kv storage.KVInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) CounterServiceInterface {
	return &CounterService{
		kv:      kv,
		logger:  logger,
		metrics: metrics,
	}
}

// Increment adds one to the user's counter, creating it at 1. A non-empty
// displayName replaces the stored one.
func (s *CounterService) Increment(scope, userID, displayName string) (int64, error) {
	if scope == "" {
		return 0, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.BuildKey(storage.KindUser, scope, userID)
	rec, err := s.get(key)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		rec = &models.UserCounterRecord{UserID: userID}
	}
	rec.Count++
	if displayName != "" {
		rec.DisplayName = displayName
	}

	value, err := models.EncodeRecord(rec)
	if err != nil {
		return 0, fmt.Errorf("encode user counter: %w", err)
	}
	if err := s.kv.Put(key, value); err != nil {
		return 0, err
	}
	return rec.Count, nil
}

// Get returns nil, nil for a user without repeats.
func (s *CounterService) Get(scope, userID string) (*models.UserCounterRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(storage.BuildKey(storage.KindUser, scope, userID))
}

func (s *CounterService) Scan(scope string) ([]*models.UserCounterRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := storage.ScopePrefix(storage.KindUser, scope)
	pairs, err := s.kv.Scan(prefix)
	if err != nil {
		return nil, err
	}
	records := make([]*models.UserCounterRecord, 0, len(pairs))
	for _, p := range pairs {
		rec, err := models.DecodeUserCounter(string(p.Key), p.Value)
		if err != nil {
			s.logger.Warnf(providers.TypeStorage, "Skipping record: %s", err)
			s.metrics.IncSkippedRecords(string(storage.KindUser))
			continue
		}
		if rec.UserID == "" {
			rec.UserID, _ = storage.KeyTail(prefix, p.Key)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CounterService) get(key []byte) (*models.UserCounterRecord, error) {
	value, err := s.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := models.DecodeUserCounter(string(key), value)
	if err != nil {
		s.logger.Warnf(providers.TypeStorage, "Discarding record: %s", err)
		s.metrics.IncSkippedRecords(string(storage.KindUser))
		return nil, nil
	}
	return rec, nil
}
