package services

import (
	"container/heap"

	"nodup/internal/models"
	"nodup/internal/structures"
)

type Source int

const (
	SourceTopics Source = iota
	SourceUsers
)

func (s Source) String() string {
	if s == SourceUsers {
		return "users"
	}
	return "topics"
}

type LeaderboardServiceInterface interface {
	TopK(scope string, source Source, k int) ([]models.LeaderboardRow, error)
}

// LeaderboardService ranks a scope's records without mutating any store.
type LeaderboardService struct {
	occurrences OccurrenceServiceInterface
	counters    CounterServiceInterface
	maxLen      int
	lastLenHard int
}

func NewLeaderboardService(conf *structures.Config, occurrences OccurrenceServiceInterface, counters CounterServiceInterface) LeaderboardServiceInterface {
	return &LeaderboardService{
		occurrences: occurrences,
		counters:    counters,
		maxLen:      conf.Leaderboard.MaxLen,
		lastLenHard: conf.Leaderboard.LastLenHard,
	}
}

// TopK returns rows in descending count order. k overrides the configured soft
// cap when positive. The output never exceeds the configured hard cap, so a k
// above it is clamped.
func (s *LeaderboardService) TopK(scope string, source Source, k int) ([]models.LeaderboardRow, error) {
	h := &rankHeap{}
	switch source {
	case SourceUsers:
		records, err := s.counters.Scan(scope)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			*h = append(*h, models.LeaderboardRow{Label: rec.Label(), Count: rec.Count})
		}
	default:
		records, err := s.occurrences.Scan(scope)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			label := rec.FirstLink
			if label == "" {
				label = rec.Identity
			}
			*h = append(*h, models.LeaderboardRow{Label: label, Count: rec.Count})
		}
	}
	heap.Init(h)

	hard := s.lastLenHard
	soft := s.maxLen
	if k > 0 {
		soft = k
	}
	return drainRanked(h, min(soft, hard), hard), nil
}

// drainRanked pops rows until the soft cap is reached. Rows tied with the last
// emitted count keep extending the list, up to the hard cap.
func drainRanked(h *rankHeap, soft, hard int) []models.LeaderboardRow {
	rows := make([]models.LeaderboardRow, 0, min(h.Len(), hard))
	var lastCount int64
	for h.Len() > 0 {
		row := heap.Pop(h).(models.LeaderboardRow)
		rank := len(rows) + 1
		if rank > soft && (rank > hard || row.Count < lastCount) {
			break
		}
		lastCount = row.Count
		row.Rank = rank
		rows = append(rows, row)
	}
	return rows
}

// rankHeap is a max-heap on Count; equal counts pop in label order.
type rankHeap []models.LeaderboardRow

func (h rankHeap) Len() int { return len(h) }

func (h rankHeap) Less(i, j int) bool {
	if h[i].Count != h[j].Count {
		return h[i].Count > h[j].Count
	}
	return h[i].Label < h[j].Label
}

func (h rankHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) { *h = append(*h, x.(models.LeaderboardRow)) }

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	row := old[n-1]
	*h = old[:n-1]
	return row
}
