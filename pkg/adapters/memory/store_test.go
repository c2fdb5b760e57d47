package memory_test

import (
	"testing"

	"github.com/aretw0/provision/pkg/adapters/memory"
	"github.com/aretw0/provision/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}
