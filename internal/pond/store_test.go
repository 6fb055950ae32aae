package pond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_Defaults(t *testing.T) {
	store, err := NewStore(Config{})
	require.NoError(t, err)

	assert.Equal(t, InitialDucks, store.GetState())
	assert.NotEmpty(t, store.Name())
}

func TestNewStore_Preloaded(t *testing.T) {
	ducks := []Duck{{Name: "Rex", Color: "green"}}

	store, err := NewStore(Config{Name: "pond", Ducks: ducks})
	require.NoError(t, err)

	assert.Equal(t, "pond", store.Name())
	assert.Equal(t, ducks, store.GetState())
}

func TestNewStore_EndToEnd(t *testing.T) {
	store, err := NewStore(Config{})
	require.NoError(t, err)

	var seen [][]Duck
	unsub, err := store.Subscribe(func() { seen = append(seen, store.GetState()) })
	require.NoError(t, err)
	defer unsub()

	_, err = store.Dispatch(AddDuckAction(Duck{Name: "Rex", Color: "green"}))
	require.NoError(t, err)
	_, err = store.Dispatch(RemoveDuckAction("Daffy"))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, []Duck{
		{Name: "Statey", Color: "mystery"},
		{Name: "Rex", Color: "green"},
	}, store.GetState())
}
