package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"go.uber.org/atomic"

	"nodup/internal/extract"
	"nodup/internal/models"
	"nodup/internal/notify"
	"nodup/internal/providers"
	"nodup/internal/services"
	"nodup/internal/structures"
)

const (
	maxRequestBodySize = 16 << 20 // 16 MB, images travel base64-encoded
	callerHeader       = "X-User-Id"
)

var (
	errMissingScope = errors.New("scope is required")
	errBadK         = errors.New("k must be a non-negative integer")
)

type boardResponse struct {
	Scope string                  `json:"scope"`
	Rows  []models.LeaderboardRow `json:"rows"`
	Text  string                  `json:"text"`
}

type meResponse struct {
	Scope string `json:"scope"`
	User  string `json:"user"`
	Count int64  `json:"count"`
	Text  string `json:"text"`
}

type ApiController struct {
	conf        *structures.Config
	logger      providers.Logger
	dedup       services.DedupServiceInterface
	leaderboard services.LeaderboardServiceInterface
	counters    services.CounterServiceInterface
	renderer    notify.RendererInterface
	cache       providers.CacheProviderInterface

	// scope -> *atomic.Int64, bumped whenever an item is recorded so cached
	// boards of that scope stop being served.
	generations sync.Map
}

func NewApiController(
	conf *structures.Config,
	logger providers.Logger,
	dedup services.DedupServiceInterface,
	leaderboard services.LeaderboardServiceInterface,
	counters services.CounterServiceInterface,
	renderer notify.RendererInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		conf:        conf,
		logger:      logger,
		dedup:       dedup,
		leaderboard: leaderboard,
		counters:    counters,
		renderer:    renderer,
		cache:       cache,
	}
}

func getScope(r *http.Request) (string, error) {
	scope := extract.NormalizeScope(r.URL.Query().Get("scope"))
	if scope == "" {
		return "", errMissingScope
	}
	return scope, nil
}

func getK(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return 0, nil
	}
	k, err := cast.ToIntE(raw)
	if err != nil || k < 0 {
		return 0, errBadK
	}
	return k, nil
}

func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error computing %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, gson)
}

// ReceiveItem runs one posted item through deduplication and returns the outcome.
func (ac *ApiController) ReceiveItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.IncomingItem
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	outcome := ac.dedup.Process(&payload)
	if outcome.Status == models.OutcomeNew || outcome.Status == models.OutcomeRepeat {
		ac.generation(outcome.Scope).Inc()
	}
	gson, err := json.Marshal(outcome)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, gson)
}

func (ac *ApiController) generation(scope string) *atomic.Int64 {
	if g, ok := ac.generations.Load(scope); ok {
		return g.(*atomic.Int64)
	}
	g, _ := ac.generations.LoadOrStore(scope, atomic.NewInt64(0))
	return g.(*atomic.Int64)
}

// GetTopUsers and GetTopTopics serve rendered boards. A cached board lives for
// cache.ttl but is dropped as soon as an item is recorded in its scope.
func (ac *ApiController) GetTopUsers(w http.ResponseWriter, r *http.Request) {
	ac.serveBoard(w, r, services.SourceUsers)
}

func (ac *ApiController) GetTopTopics(w http.ResponseWriter, r *http.Request) {
	ac.serveBoard(w, r, services.SourceTopics)
}

func (ac *ApiController) serveBoard(w http.ResponseWriter, r *http.Request, source services.Source) {
	scope, err := getScope(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	k, err := getK(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	gen := ac.generation(scope).Load()
	cacheKey := source.String() + ":" + scope + ":" + strconv.FormatInt(gen, 10) + ":" + strconv.Itoa(k)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		rows, err := ac.leaderboard.TopK(scope, source, k)
		if err != nil {
			return nil, err
		}
		text := ac.renderer.RenderUsers(rows)
		if source == services.SourceTopics {
			text = ac.renderer.RenderTopics(rows)
		}
		return &boardResponse{Scope: scope, Rows: rows, Text: text}, nil
	})
}

// GetMe returns the caller's repeat counter. Admins may ask for another user.
func (ac *ApiController) GetMe(w http.ResponseWriter, r *http.Request) {
	scope, err := getScope(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	caller := r.Header.Get(callerHeader)
	user := r.URL.Query().Get("user")
	if user == "" {
		user = caller
	}
	if user == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}
	if user != caller && !ac.conf.IsAdmin(caller) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	rec, err := ac.counters.Get(scope, user)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error reading counter of %s in scope %s: %s", user, scope, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	var count int64
	if rec != nil {
		count = rec.Count
	}

	gson, err := json.Marshal(&meResponse{Scope: scope, User: user, Count: count, Text: ac.renderer.RenderUserCount(count)})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, gson)
}
