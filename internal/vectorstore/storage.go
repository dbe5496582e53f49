// Package vectorstore names the storage contract implemented by the index
// backends (sqlite, qdrant, memory).
package vectorstore

import "infraguard/internal/domain"

// Storage persists vectors and supports similarity search.
type Storage = domain.VectorStore
