package ports

import (
	"context"

	"grnseeds/domain/network"
)

// NetworkWriterPort persists an edge table, replacing any existing file at path
type NetworkWriterPort interface {
	WriteNetwork(ctx context.Context, path string, table *network.EdgeTable) error
}

// NetworkReaderPort reads back a persisted edge table
type NetworkReaderPort interface {
	ReadNetwork(ctx context.Context, path string) (*network.EdgeTable, error)
}
