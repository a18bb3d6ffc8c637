package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	in := payload{Name: "go", Count: 3}
	require.NoError(t, SetJSON(ctx, rdb, "k", in, time.Minute))

	var out payload
	found, err := GetJSON(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSONMiss(t *testing.T) {
	rdb := testClient(t)

	var out payload
	found, err := GetJSON(context.Background(), rdb, "absent", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, nil, "k", payload{}, time.Minute))

	var out payload
	found, err := GetJSON(ctx, nil, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, rdb, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)

	// Second read should come from cache without another fetch.
	var second payload
	require.NoError(t, Aside(ctx, rdb, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	rdb := testClient(t)

	fetchErr := errors.New("db down")
	var out payload
	err := Aside(context.Background(), rdb, "k", &out, time.Minute, func() error { return fetchErr })
	assert.ErrorIs(t, err, fetchErr)
}
