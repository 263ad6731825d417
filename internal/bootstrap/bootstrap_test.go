package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/store/memstore"
)

func TestOpenStoreMemory(t *testing.T) {
	st, err := OpenStore(context.Background(), config.App{StoreDriver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, st)

	_, err = OpenStore(context.Background(), config.App{StoreDriver: "bolt"})
	assert.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	assert.IsType(t, &services.ConsoleNotifier{}, NewNotifier(config.App{SMSProvider: "console"}))
	assert.IsType(t, &services.TextbeltNotifier{}, NewNotifier(config.App{SMSProvider: "textbelt", TextbeltURL: "http://localhost"}))
}
