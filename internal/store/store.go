package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPreviews = []byte("previews")
)

// AssetStore implements domain.AssetStore using BoltDB.
type AssetStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string]*domain.PreviewAsset
}

// NewAssetStore opens (or creates) the preview database under cacheDir.
// An empty cacheDir keeps everything in memory.
func NewAssetStore(cacheDir string) (*AssetStore, error) {
	if cacheDir == "" {
		// Memory-only mode (no persistence)
		return &AssetStore{cache: make(map[string]*domain.PreviewAsset)}, nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "previews.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPreviews)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &AssetStore{db: db, cache: make(map[string]*domain.PreviewAsset)}, nil
}

func (s *AssetStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func assetKey(projectID string) []byte {
	return []byte("project:" + projectID)
}

// GetAsset returns the stored preview when it was fetched from sourceURL.
// A preview from a different URL is treated as missing.
func (s *AssetStore) GetAsset(projectID, sourceURL string) (*domain.PreviewAsset, bool) {
	asset, ok := s.load(projectID)
	if !ok || asset.SourceURL != sourceURL {
		return nil, false
	}
	return asset, true
}

func (s *AssetStore) load(projectID string) (*domain.PreviewAsset, bool) {
	// Check memory cache first
	s.mu.RLock()
	if asset, ok := s.cache[projectID]; ok {
		s.mu.RUnlock()
		return asset, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreviews)
		if b == nil {
			return nil
		}
		if v := b.Get(assetKey(projectID)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	var asset domain.PreviewAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[projectID] = &asset
	s.mu.Unlock()

	return &asset, true
}

// SaveAsset stores a preview. Previews are immutable: saving a second one
// for the same project and URL is ignored.
func (s *AssetStore) SaveAsset(asset *domain.PreviewAsset) error {
	if asset == nil || asset.ProjectID == "" {
		return fmt.Errorf("invalid preview asset")
	}
	if existing, ok := s.load(asset.ProjectID); ok && existing.SourceURL == asset.SourceURL {
		return nil
	}

	data, err := json.Marshal(asset)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[asset.ProjectID] = asset
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreviews)
		return b.Put(assetKey(asset.ProjectID), data)
	})
}

// ListAssets returns every stored preview
func (s *AssetStore) ListAssets() []*domain.PreviewAsset {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		assets := make([]*domain.PreviewAsset, 0, len(s.cache))
		for _, a := range s.cache {
			assets = append(assets, a)
		}
		return assets
	}

	var assets []*domain.PreviewAsset
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreviews)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var asset domain.PreviewAsset
			if err := json.Unmarshal(v, &asset); err == nil {
				assets = append(assets, &asset)
			}
			return nil
		})
	})
	return assets
}

// InvalidateAll wipes every stored preview
func (s *AssetStore) InvalidateAll() error {
	s.mu.Lock()
	s.cache = make(map[string]*domain.PreviewAsset)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketPreviews) != nil {
			if err := tx.DeleteBucket(bucketPreviews); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketPreviews)
		return err
	})
}
