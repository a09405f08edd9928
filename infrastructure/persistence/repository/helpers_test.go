package repository

import (
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	"go.uber.org/zap"
)

func newTestStore() *store.MemoryStore {
	return store.NewMemoryStore()
}

var testLogger = zap.NewNop()
