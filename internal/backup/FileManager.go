package backup

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"nodup/internal/backup/interfaces"
	"nodup/internal/providers"
	"nodup/internal/storage"
)

// FileManager writes compressed store snapshots to disk and reads them back.
type FileManager struct {
	snapshot   storage.SnapshotInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, snapshot storage.SnapshotInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		compressor: compressor,
		snapshot:   snapshot,
		logger:     logger,
		metrics:    metrics,
	}
}

// SaveToFile replaces fileName atomically through a temporary file.
func (f *FileManager) SaveToFile(fileName string) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := f.snapshot.Backup(&buf); err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	data, err := f.compressor.Compress(buf.Bytes())
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return err
	}
	f.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile reports false, nil when there is no snapshot yet.
func (f *FileManager) LoadFromFile(fileName string) (bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return false, fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := f.snapshot.Load(bytes.NewReader(decompressedData)); err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	return true, nil
}

// ProvideFileManager is NewFileManager plus a cleanup releasing the compressor.
func ProvideFileManager(compressor interfaces.CompressorInterface, snapshot storage.SnapshotInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*FileManager, func()) {
	fm := NewFileManager(compressor, snapshot, logger, metrics)
	return fm, fm.Close
}
