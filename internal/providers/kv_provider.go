package providers

import (
	"nodup/internal/storage"
	"nodup/internal/structures"
)

// NewKVProvider opens the Badger substrate shared by all stores. The returned
// cleanup closes it.
func NewKVProvider(conf *structures.Config, logger Logger) (*storage.BadgerKV, func(), error) {
	kv, err := storage.NewBadgerKV(conf.Storage.Dir, conf.Storage.InMemory, conf.Storage.SyncWrites)
	if err != nil {
		return nil, nil, err
	}
	if conf.Storage.InMemory {
		logger.Infof(TypeStorage, "Opened in-memory store")
	} else {
		logger.Infof(TypeStorage, "Opened store at %s", conf.Storage.Dir)
	}

	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Errorf(TypeStorage, "Error closing store: %s", err)
			return
		}
		logger.Infof(TypeStorage, "Store closed")
	}
	return kv, cleanup, nil
}
