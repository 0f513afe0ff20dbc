package archive

import (
	"context"
	"testing"
	"time"

	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageKey(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	key := storageKey("asset-1", "pier.jpg", now)
	assert.Equal(t, "media/2024/03/asset-1/pier.jpg", key)
}

func TestNew_UnconfiguredReturnsNoMirror(t *testing.T) {
	m, err := New(context.Background(), Options{}, logging.NewJSONLogger())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestStore_NilMirrorIsANoOp(t *testing.T) {
	var m *Mirror
	m.Store(context.Background(), "id", "f.jpg", []byte("x"))
}
