package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Dir        string `yaml:"dir"`
	InMemory   bool   `yaml:"inMemory"`
	SyncWrites bool   `yaml:"syncWrites"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type DedupConfig struct {
	SimilarityThreshold int           `yaml:"similarityThreshold" validate:"required|int|min:1"`
	ImageTTL            time.Duration `yaml:"imageTTL" validate:"required|min:1"`
	DryRun              bool          `yaml:"dryRun"`
	IgnoredDomains      []string      `yaml:"ignoredDomains"`
	MaxImageBytes       int           `yaml:"maxImageBytes"`
}

type LeaderboardConfig struct {
	MaxLen      int `yaml:"maxLen" validate:"required|int|min:1"`
	LastLenHard int `yaml:"lastLenHard" validate:"required|int|min:1"`
}

type BackupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	FilePath string        `yaml:"filePath"`
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Storage     StorageConfig     `yaml:"storage"`
	Logger      LoggerConfig      `yaml:"logger"`
	Dedup       DedupConfig       `yaml:"dedup"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Backup      BackupConfig      `yaml:"backup"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Admins      []string          `yaml:"admins"`
}

// IsAdmin reports whether userID is listed in the admins section.
func (c *Config) IsAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}
