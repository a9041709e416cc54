package inputs

import (
	"context"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/model"
)

// ProfileSource reads the aggregate load profile.
type ProfileSource interface {
	ReadProfile(ctx context.Context, shape model.Shape) (model.LoadProfile, error)
}

// NodeCatalog reads the per-bus weight catalog.
type NodeCatalog interface {
	Nodes(ctx context.Context) ([]model.NodeRecord, error)
}

var (
	profileRegistry = factory.NewRegistry[ProfileSource]("profile source")
	catalogRegistry = factory.NewRegistry[NodeCatalog]("node catalog")
)

// RegisterProfileSource adds a profile source factory identified by name.
func RegisterProfileSource(name string, f factory.Factory[ProfileSource]) error {
	return profileRegistry.Register(name, f)
}

// RegisterNodeCatalog adds a node catalog factory identified by name.
func RegisterNodeCatalog(name string, f factory.Factory[NodeCatalog]) error {
	return catalogRegistry.Register(name, f)
}

// NewProfileSource creates the configured profile source.
func NewProfileSource(cfg factory.ModuleConfig) (ProfileSource, error) {
	return profileRegistry.Create(cfg)
}

// NewNodeCatalog creates the configured node catalog.
func NewNodeCatalog(cfg factory.ModuleConfig) (NodeCatalog, error) {
	return catalogRegistry.Create(cfg)
}

// ProfileTypes lists the registered profile source types.
func ProfileTypes() []string { return profileRegistry.Names() }

// CatalogTypes lists the registered node catalog types.
func CatalogTypes() []string { return catalogRegistry.Names() }
