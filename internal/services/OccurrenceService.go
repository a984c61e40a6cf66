package services

import (
	"errors"
	"fmt"
	"sync"

	"nodup/internal/models"
	"nodup/internal/providers"
	"nodup/internal/storage"
)

// OccurrenceServiceInterface is the exact-match store keyed by (scope, identity).
type OccurrenceServiceInterface interface {
	Lookup(scope, identity string) (*models.OccurrenceRecord, error)
	RecordFirst(scope, identity, link, user string) (*models.OccurrenceRecord, error)
	RecordRepeat(scope, identity string) (*models.OccurrenceRecord, error)
	Observe(scope, identity, link, user string) (*models.OccurrenceRecord, bool, error)
	Scan(scope string) ([]*models.OccurrenceRecord, error)
}

type OccurrenceService struct {
	mu      sync.Mutex
	kv      storage.KVInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewOccurrenceService(kv storage.KVInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) OccurrenceServiceInterface {
	return &OccurrenceService{
		kv:      kv,
		logger:  logger,
		metrics: metrics,
	}
}

// Lookup returns nil, nil when the identity has never been seen in scope.
func (s *OccurrenceService) Lookup(scope, identity string) (*models.OccurrenceRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(storage.BuildKey(storage.KindOccurrence, scope, identity))
}

func (s *OccurrenceService) RecordFirst(scope, identity, link, user string) (*models.OccurrenceRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.BuildKey(storage.KindOccurrence, scope, identity)
	existing, err := s.get(key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRecorded, identity)
	}
	return s.recordFirst(key, identity, link, user)
}

func (s *OccurrenceService) RecordRepeat(scope, identity string) (*models.OccurrenceRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.BuildKey(storage.KindOccurrence, scope, identity)
	rec, err := s.get(key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRecorded, identity)
	}
	return s.recordRepeat(key, rec)
}

// Observe runs lookup and then recordFirst or recordRepeat under a single lock.
// The boolean is true when the identity had been seen before.
func (s *OccurrenceService) Observe(scope, identity, link, user string) (*models.OccurrenceRecord, bool, error) {
	if scope == "" {
		return nil, false, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.BuildKey(storage.KindOccurrence, scope, identity)
	rec, err := s.get(key)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		rec, err = s.recordFirst(key, identity, link, user)
		return rec, false, err
	}
	rec, err = s.recordRepeat(key, rec)
	return rec, true, err
}

// Scan returns every record of scope in key order. Records that fail to decode are skipped.
func (s *OccurrenceService) Scan(scope string) ([]*models.OccurrenceRecord, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, err := s.kv.Scan(storage.ScopePrefix(storage.KindOccurrence, scope))
	if err != nil {
		return nil, err
	}
	records := make([]*models.OccurrenceRecord, 0, len(pairs))
	for _, p := range pairs {
		rec, err := models.DecodeOccurrence(string(p.Key), p.Value)
		if err != nil {
			s.logger.Warnf(providers.TypeStorage, "Skipping record: %s", err)
			s.metrics.IncSkippedRecords(string(storage.KindOccurrence))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *OccurrenceService) get(key []byte) (*models.OccurrenceRecord, error) {
	value, err := s.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := models.DecodeOccurrence(string(key), value)
	if err != nil {
		// Undecodable records read as unseen so the next recordFirst replaces them.
		s.logger.Warnf(providers.TypeStorage, "Discarding record: %s", err)
		s.metrics.IncSkippedRecords(string(storage.KindOccurrence))
		return nil, nil
	}
	return rec, nil
}

func (s *OccurrenceService) recordFirst(key []byte, identity, link, user string) (*models.OccurrenceRecord, error) {
	rec := &models.OccurrenceRecord{
		Identity:  identity,
		Count:     1,
		FirstLink: link,
		FirstUser: user,
	}
	if err := s.put(key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *OccurrenceService) recordRepeat(key []byte, rec *models.OccurrenceRecord) (*models.OccurrenceRecord, error) {
	next := *rec
	next.Count++
	if err := s.put(key, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *OccurrenceService) put(key []byte, rec *models.OccurrenceRecord) error {
	value, err := models.EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode occurrence: %w", err)
	}
	return s.kv.Put(key, value)
}
