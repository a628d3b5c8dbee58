package events

import "github.com/agentwire/agentwire/core/wire"

// KindMetadataUpdated identifies a metadata merge into the turn.
const KindMetadataUpdated Kind = "metadata.updated"

// MetadataUpdated carries the partial metadata fields merged into the
// turn by one event.
type MetadataUpdated struct {
	Base
	Delta wire.MetadataDelta
}

// NewMetadataUpdated creates a metadata updated event.
func NewMetadataUpdated(delta wire.MetadataDelta) MetadataUpdated {
	return MetadataUpdated{Base: NewBase(KindMetadataUpdated), Delta: delta}
}
