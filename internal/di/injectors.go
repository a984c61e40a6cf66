//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"nodup/internal"
	"nodup/internal/backup"
	"nodup/internal/controllers"
	"nodup/internal/extract"
	"nodup/internal/hashing"
	"nodup/internal/notify"
	"nodup/internal/providers"
	"nodup/internal/services"
	"nodup/internal/storage"
	"nodup/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewKVProvider,
		wire.Bind(new(storage.KVInterface), new(*storage.BadgerKV)),
		wire.Bind(new(storage.SnapshotInterface), new(*storage.BadgerKV)),

		extract.NewExtractor,
		hashing.NewGradientHasher,
		notify.NewRenderer,

		services.NewOccurrenceService,
		services.NewImageIndexService,
		services.NewCounterService,
		services.NewLeaderboardService,
		services.NewDedupService,

		backup.NewZstdCompressor,
		backup.ProvideFileManager,
		backup.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
