package outputs

import (
	"context"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/model"
)

// Writer persists an allocation result. Implementations must leave no
// partial artifact behind when Write fails.
type Writer interface {
	Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error
	Close() error
}

// Staged is a prepared write. Exactly one of Commit or Discard is called.
type Staged interface {
	Commit() error
	Discard() error
}

// Stager is a Writer that can prepare its output without publishing it,
// so a run with several outputs publishes all of them or none.
type Stager interface {
	Writer
	Prepare(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (Staged, error)
}

// Commit publishes a prepared write, passing err through unchanged.
func Commit(st Staged, err error) error {
	if err != nil {
		return err
	}
	return st.Commit()
}

var writerRegistry = factory.NewRegistry[Writer]("result writer")

// RegisterWriter adds a writer factory identified by name.
func RegisterWriter(name string, f factory.Factory[Writer]) error {
	return writerRegistry.Register(name, f)
}

// NewWriter creates the configured writer.
func NewWriter(cfg factory.ModuleConfig) (Writer, error) {
	return writerRegistry.Create(cfg)
}

// WriterTypes lists the registered writer types.
func WriterTypes() []string { return writerRegistry.Names() }
