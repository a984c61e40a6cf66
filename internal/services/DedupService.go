package services

import (
	"nodup/internal/extract"
	"nodup/internal/hashing"
	"nodup/internal/models"
	"nodup/internal/notify"
	"nodup/internal/providers"

	"go.uber.org/atomic"
)

// ImageIdentityPrefix turns a perceptual hash into a canonical identity for the exact-match store.
const ImageIdentityPrefix = "https://img.telegram.com/"

type DedupServiceInterface interface {
	Process(item *models.IncomingItem) *models.Outcome
	Stats() DedupStats
}

// DedupStats are process-lifetime counters for the health endpoint.
type DedupStats struct {
	Processed  int64 `json:"processed"`
	Repeats    int64 `json:"repeats"`
	Unrecorded int64 `json:"unrecorded"`
}

// DedupService runs one incoming item through extraction, the image index,
// the exact-match store and the user counters.
type DedupService struct {
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	extractor   extract.ExtractorInterface
	hasher      hashing.HasherInterface
	renderer    notify.RendererInterface
	occurrences OccurrenceServiceInterface
	images      ImageIndexServiceInterface
	counters    CounterServiceInterface

	processed  *atomic.Int64
	repeats    *atomic.Int64
	unrecorded *atomic.Int64
}

func NewDedupService(
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	extractor extract.ExtractorInterface,
	hasher hashing.HasherInterface,
	renderer notify.RendererInterface,
	occurrences OccurrenceServiceInterface,
	images ImageIndexServiceInterface,
	counters CounterServiceInterface,
) DedupServiceInterface {
	return &DedupService{
		logger:      logger,
		metrics:     metrics,
		extractor:   extractor,
		hasher:      hasher,
		renderer:    renderer,
		occurrences: occurrences,
		images:      images,
		counters:    counters,
		processed:   atomic.NewInt64(0),
		repeats:     atomic.NewInt64(0),
		unrecorded:  atomic.NewInt64(0),
	}
}

// Process never fails: storage errors surface as OutcomeUnrecorded.
func (s *DedupService) Process(item *models.IncomingItem) *models.Outcome {
	s.processed.Inc()
	outcome := s.process(item)
	s.metrics.IncOutcome(string(outcome.Status))
	switch outcome.Status {
	case models.OutcomeRepeat:
		s.repeats.Inc()
		outcome.Reply = s.renderer.RenderOutcome(outcome)
	case models.OutcomeUnrecorded:
		s.unrecorded.Inc()
	}
	return outcome
}

func (s *DedupService) process(item *models.IncomingItem) *models.Outcome {
	ex, err := s.extractor.Extract(item)
	if err != nil {
		s.logger.Debugf(providers.TypeDedup, "Ignoring item: %s", err)
		return &models.Outcome{Status: models.OutcomeIgnored}
	}
	outcome := &models.Outcome{Status: models.OutcomeIgnored, Scope: ex.Scope}

	switch ex.Kind {
	case extract.KindImage:
		hash, err := s.hasher.Hash(ex.Image)
		if err != nil {
			s.logger.Warnf(providers.TypeDedup, "Failed to hash image in scope %s: %s", ex.Scope, err)
			return outcome
		}
		candidate := ImageIdentityPrefix + hash.String()
		identity, err := s.images.FindOrRegister(ex.Scope, hash, candidate)
		if err != nil {
			return s.unrecordedOutcome(outcome, err)
		}
		if identity != candidate {
			outcome.Matched = identity
		}
		outcome.Identity = identity
	case extract.KindLink:
		outcome.Identity = ex.Link
	default:
		return outcome
	}

	rec, repeat, err := s.occurrences.Observe(ex.Scope, outcome.Identity, ex.MessageLink, ex.UserID)
	if err != nil {
		return s.unrecordedOutcome(outcome, err)
	}
	outcome.Record = rec
	if !repeat {
		outcome.Status = models.OutcomeNew
		s.logger.Debugf(providers.TypeDedup, "New %s in scope %s", outcome.Identity, ex.Scope)
		return outcome
	}

	outcome.Status = models.OutcomeRepeat
	s.logger.Infof(providers.TypeDedup, "Repeat %s in scope %s seen %d times", outcome.Identity, ex.Scope, rec.Count)
	if ex.UserID == "" {
		return outcome
	}
	count, err := s.counters.Increment(ex.Scope, ex.UserID, ex.DisplayName)
	if err != nil {
		s.logger.Errorf(providers.TypeStorage, "Error counting repeat of user %s in scope %s: %s", ex.UserID, ex.Scope, err)
		return outcome
	}
	outcome.UserCount = count
	return outcome
}

func (s *DedupService) unrecordedOutcome(outcome *models.Outcome, err error) *models.Outcome {
	s.logger.Errorf(providers.TypeStorage, "Item in scope %s not recorded: %s", outcome.Scope, err)
	outcome.Status = models.OutcomeUnrecorded
	outcome.Record = nil
	return outcome
}

func (s *DedupService) Stats() DedupStats {
	return DedupStats{
		Processed:  s.processed.Load(),
		Repeats:    s.repeats.Load(),
		Unrecorded: s.unrecorded.Load(),
	}
}
