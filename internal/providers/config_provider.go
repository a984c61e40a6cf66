package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"nodup/internal/structures"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("dedup.similarityThreshold", 4)
	v.SetDefault("dedup.imageTTL", 240*time.Hour)
	v.SetDefault("dedup.dryRun", true)
	v.SetDefault("dedup.ignoredDomains", []string{"github.com", "stackoverflow.com"})
	v.SetDefault("dedup.maxImageBytes", 10<<20)
	v.SetDefault("leaderboard.maxLen", 20)
	v.SetDefault("leaderboard.lastLenHard", 30)
	v.SetDefault("backup.interval", 10*time.Minute)
	v.SetDefault("cache.ttl", 5*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "NODUP_LOG_LEVEL")
	v.BindEnv("storage.dir", "NODUP_STORAGE_DIR")
	v.BindEnv("dedup.dryRun", "NODUP_DRY_RUN")
	v.BindEnv("dedup.similarityThreshold", "NODUP_SIMILARITY_THRESHOLD")
	v.BindEnv("dedup.imageTTL", "NODUP_IMAGE_TTL")
	v.BindEnv("cache.enabled", "NODUP_CACHE_ENABLED")
	v.BindEnv("admins", "NODUP_ADMINS")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Admins = parseAdmins(v.Get("admins"))

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "NoDupDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// parseAdmins accepts a yaml list or a colon separated env value ("1:2:3").
func parseAdmins(raw any) []string {
	var admins []string
	for _, item := range cast.ToStringSlice(raw) {
		for _, id := range strings.Split(item, ":") {
			id = strings.TrimSpace(id)
			if id != "" {
				admins = append(admins, id)
			}
		}
	}
	return admins
}
