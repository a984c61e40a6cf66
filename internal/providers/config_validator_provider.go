package providers

import (
	"errors"

	"github.com/gookit/validate"

	"nodup/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if cv.conf.Leaderboard.LastLenHard < cv.conf.Leaderboard.MaxLen {
		return errors.New("leaderboard.lastLenHard must not be lower than leaderboard.maxLen")
	}
	if !cv.conf.Storage.InMemory && cv.conf.Storage.Dir == "" {
		return errors.New("storage.dir is required unless storage.inMemory is set")
	}
	if cv.conf.Backup.Enabled && (cv.conf.Backup.FilePath == "" || cv.conf.Backup.Interval <= 0) {
		return errors.New("backup.filePath and a positive backup.interval are required when backup is enabled")
	}
	return nil
}
