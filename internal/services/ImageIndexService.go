package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"nodup/internal/models"
	"nodup/internal/providers"
	"nodup/internal/storage"
	"nodup/internal/structures"
)

const (
	lookupHit  = "hit"
	lookupMiss = "miss"

	evictionDryRun = "dry_run"
	evictionLive   = "live"
)

// ImageIndexServiceInterface is the perceptual near-duplicate index.
type ImageIndexServiceInterface interface {
	FindOrRegister(scope string, hash models.PerceptualHash, candidate string) (string, error)
	Entries(scope string) ([]*models.ImageIndexEntry, error)
}

// ImageIndexService keeps one entry per registered hash and retires entries
// older than the TTL while scanning, so no background sweep is needed.
type ImageIndexService struct {
	mu        sync.Mutex
	kv        storage.KVInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	threshold int
	ttl       time.Duration
	dryRun    bool
	now       func() time.Time
}

func NewImageIndexService(conf *structures.Config, kv storage.KVInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ImageIndexServiceInterface {
	return &ImageIndexService{
		kv:        kv,
		logger:    logger,
		metrics:   metrics,
		threshold: conf.Dedup.SimilarityThreshold,
		ttl:       conf.Dedup.ImageTTL,
		dryRun:    conf.Dedup.DryRun,
		now:       time.Now,
	}
}

// FindOrRegister returns the identity of the closest live entry when its
// distance is strictly below the threshold, touching that entry. Otherwise it
// registers hash under candidate and returns candidate. Entries found expired
// or undecodable during the scan are evicted afterwards, except the one that
// was kept.
//
// Equidistant entries are resolved in favour of the most recently touched one,
// then the one with the lowest key.
func (s *ImageIndexService) FindOrRegister(scope string, hash models.PerceptualHash, candidate string) (string, error) {
	if scope == "" {
		return "", ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prefix := storage.ScopePrefix(storage.KindImage, scope)
	pairs, err := s.kv.Scan(prefix)
	if err != nil {
		return "", err
	}

	var best *models.ImageIndexEntry
	bestDist := 0
	expired := make(map[string]struct{})

	for _, p := range pairs {
		hashStr, _ := storage.KeyTail(prefix, p.Key)
		entry, err := models.DecodeImageIndexEntry(string(p.Key), scope, hashStr, p.Value)
		if err != nil {
			s.skip(err)
			expired[hashStr] = struct{}{}
			continue
		}
		if entry.Expired(now, s.ttl) {
			expired[hashStr] = struct{}{}
			continue
		}
		entryHash, err := models.ParseHash(hashStr)
		if err != nil {
			s.skip(err)
			expired[hashStr] = struct{}{}
			continue
		}
		dist, err := hash.Distance(entryHash)
		if err != nil {
			s.skip(err)
			continue
		}
		if best == nil || dist < bestDist || (dist == bestDist && entry.Touched.After(best.Touched)) {
			best = entry
			bestDist = dist
		}
	}

	var kept *models.ImageIndexEntry
	if best != nil && bestDist < s.threshold {
		best.Touched = now
		kept = best
		s.metrics.IncImageLookup(lookupHit)
		s.logger.Debugf(providers.TypeDedup, "Image %s in scope %s matched %s at distance %d", hash, scope, best.Hash, bestDist)
	} else {
		kept = &models.ImageIndexEntry{
			Scope:    scope,
			Hash:     hash.String(),
			Identity: candidate,
			Touched:  now,
		}
		s.metrics.IncImageLookup(lookupMiss)
		s.logger.Debugf(providers.TypeDedup, "Image %s in scope %s registered among %d entries", hash, scope, len(pairs))
	}
	if err := s.put(kept); err != nil {
		return "", err
	}
	delete(expired, kept.Hash)

	s.evict(scope, expired)
	return kept.Identity, nil
}

// Entries lists the live and expired entries of scope without mutating anything.
func (s *ImageIndexService) Entries(scope string) ([]*models.ImageIndexEntry, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := storage.ScopePrefix(storage.KindImage, scope)
	pairs, err := s.kv.Scan(prefix)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.ImageIndexEntry, 0, len(pairs))
	for _, p := range pairs {
		hashStr, _ := storage.KeyTail(prefix, p.Key)
		entry, err := models.DecodeImageIndexEntry(string(p.Key), scope, hashStr, p.Value)
		if err != nil {
			s.skip(err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ImageIndexService) put(entry *models.ImageIndexEntry) error {
	value, err := models.EncodeRecord(entry)
	if err != nil {
		return fmt.Errorf("encode image entry: %w", err)
	}
	return s.kv.Put(storage.BuildKey(storage.KindImage, entry.Scope, entry.Hash), value)
}

func (s *ImageIndexService) evict(scope string, expired map[string]struct{}) {
	if len(expired) == 0 {
		return
	}
	hashes := make([]string, 0, len(expired))
	for h := range expired {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	if s.dryRun {
		for _, h := range hashes {
			s.logger.Infof(providers.TypeDedup, "Dry run: would evict image %s from scope %s", h, scope)
		}
		s.metrics.AddImageEvictions(evictionDryRun, len(hashes))
		return
	}

	removed := 0
	for _, h := range hashes {
		if err := s.kv.Delete(storage.BuildKey(storage.KindImage, scope, h)); err != nil {
			s.logger.Errorf(providers.TypeStorage, "Error evicting image %s from scope %s: %s", h, scope, err)
			continue
		}
		removed++
		s.logger.Infof(providers.TypeDedup, "Evicted image %s from scope %s", h, scope)
	}
	s.metrics.AddImageEvictions(evictionLive, removed)
}

func (s *ImageIndexService) skip(err error) {
	s.logger.Warnf(providers.TypeStorage, "Skipping image entry: %s", err)
	s.metrics.IncSkippedRecords(string(storage.KindImage))
}
