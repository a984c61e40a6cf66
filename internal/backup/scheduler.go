package backup

import (
	"sync"

	"github.com/roylee0704/gron"

	"nodup/internal/backup/interfaces"
	"nodup/internal/providers"
	"nodup/internal/storage"
	"nodup/internal/structures"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	snapshot    storage.SnapshotInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	if !s.config.Backup.Enabled {
		s.logger.Infof(providers.TypeApp, "Snapshots disabled")
		return
	}
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Backup.Interval), func() {
		if err := s.Persist(); err == nil {
			s.logger.Infof(providers.TypeApp, "Persisted snapshot to file %s", s.config.Backup.FilePath)
		}
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the snapshot file only into an empty store.
func (s *Scheduler) Restore() error {
	if !s.config.Backup.Enabled {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	empty, err := s.snapshot.IsEmpty()
	if err != nil {
		return err
	}
	if !empty {
		s.logger.Infof(providers.TypeApp, "Store already holds data, skipping restore from %s", s.config.Backup.FilePath)
		return nil
	}
	loaded, err := s.fileManager.LoadFromFile(s.config.Backup.FilePath)
	if err != nil {
		return err
	}
	if loaded {
		s.logger.Infof(providers.TypeApp, "Restored snapshot from %s", s.config.Backup.FilePath)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.config.Backup.Enabled {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	err := s.fileManager.SaveToFile(s.config.Backup.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, snapshot storage.SnapshotInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		snapshot:    snapshot,
		fileManager: fileManager,
	}
}
