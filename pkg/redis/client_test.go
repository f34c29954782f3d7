package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/redis"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := pkgredis.NewClient(context.Background(), pkgredis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClientErrors(t *testing.T) {
	_, err := pkgredis.NewClient(context.Background(), pkgredis.Config{})
	assert.ErrorIs(t, err, pkgredis.ErrEmptyAddress)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = pkgredis.NewClient(context.Background(), pkgredis.Config{Address: addr})
	assert.ErrorContains(t, err, "redis ping failed")
}
