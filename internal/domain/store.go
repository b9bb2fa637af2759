package domain

// AssetStore persists downloaded previews (BoltDB + memory).
// A stored asset permanently suppresses further downloads for its project.
type AssetStore interface {
	// GetAsset returns the asset for a project when it was fetched from sourceURL
	GetAsset(projectID, sourceURL string) (*PreviewAsset, bool)
	SaveAsset(asset *PreviewAsset) error
	ListAssets() []*PreviewAsset
	InvalidateAll() error

	Close() error
}
