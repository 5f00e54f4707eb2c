package memory_test

import (
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/memory"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.NewStore()
	})
}
