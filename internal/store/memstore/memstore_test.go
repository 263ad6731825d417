package memstore

import (
	"testing"

	"github.com/harentsoaR/clinic-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, New())
}
