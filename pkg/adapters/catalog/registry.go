package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// ReaderInfo describes a registered catalog reader.
type ReaderInfo struct {
	Type        string `json:"type" yaml:"type"`                 // "oracle", "postgres", "sqlserver", "fixture"
	DisplayName string `json:"display_name" yaml:"display_name"` // "Oracle Database"
	Description string `json:"description" yaml:"description"`
}

// ReaderFactory creates a reader from a generic config map.
type ReaderFactory func(ctx context.Context, config map[string]any, logger *zap.Logger) (Reader, error)

// ReaderRegistration contains info + factory for creating readers.
type ReaderRegistration struct {
	Info    ReaderInfo
	Factory ReaderFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ReaderRegistration)
)

// Register is called by each reader's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg ReaderRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredReaders returns info for all registered readers, sorted by type.
func RegisteredReaders() []ReaderInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ReaderInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})
	return result
}

// GetReaderFactory returns the factory for a reader type.
// Returns nil if type is not registered.
func GetReaderFactory(readerType string) ReaderFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[readerType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if a reader type is available.
func IsRegistered(readerType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[readerType]
	return ok
}

// NewReader creates a reader of the given registered type.
func NewReader(ctx context.Context, readerType string, config map[string]any, logger *zap.Logger) (Reader, error) {
	factory := GetReaderFactory(typemap.Canonical(readerType))
	if factory == nil {
		return nil, fmt.Errorf("catalog reader %q: %w", readerType, apperrors.ErrUnknownDialect)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return factory(ctx, config, logger)
}
