package adt_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/vesting-actors/actors/builtin"
	"github.com/tokenvest/vesting-actors/actors/util/adt"
	"github.com/tokenvest/vesting-actors/support/ipld"
	tutil "github.com/tokenvest/vesting-actors/support/testing"
)

func TestMapPutGet(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	k1 := abi.AddrKey(tutil.NewIDAddr(t, 101))
	k2 := abi.AddrKey(tutil.NewIDAddr(t, 102))

	v1 := big.NewInt(1)
	require.NoError(t, m.Put(k1, &v1))

	var out big.Int
	found, err := m.Get(k1, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, out.Equals(v1))

	found, err = m.Get(k2, &out)
	require.NoError(t, err)
	assert.False(t, found)

	// Overwrite in place.
	v2 := big.NewInt(2)
	require.NoError(t, m.Put(k1, &v2))
	found, err = m.Get(k1, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, out.Equals(v2))
}

func TestMapRootRoundTrip(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	keys := make([]string, 0)
	for i := uint64(100); i < 120; i++ {
		k := abi.AddrKey(tutil.NewIDAddr(t, i))
		v := big.NewIntUnsigned(i)
		require.NoError(t, m.Put(k, &v))
		keys = append(keys, k.Key())
	}

	root, err := m.Root()
	require.NoError(t, err)

	reloaded, err := adt.AsMap(store, root, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)

	collected, err := reloaded.CollectKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, collected)

	var out big.Int
	count := 0
	err = reloaded.ForEach(&out, func(key string) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(keys), count)
}

func TestEmptyMapRoot(t *testing.T) {
	store := ipld.NewADTStore(context.Background())

	c1, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)
	c2, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	m, err := adt.AsMap(store, c1, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)
	keys, err := m.CollectKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
