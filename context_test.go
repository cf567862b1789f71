package cave

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cavelabs/cave/errors"
	"github.com/stretchr/testify/assert"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	_, ok := GetHeight(ctx)
	assert.False(t, ok)

	now := time.Unix(1554370540, 0)
	ctx = WithHeader(ctx, abci.Header{Height: 7, Time: now})
	height, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), height)
	assert.Panics(t, func() { WithHeader(ctx, abci.Header{Height: 9}) })

	bt, err := BlockTime(ctx)
	assert.NoError(t, err)
	assert.Equal(t, now, bt)
	assert.Panics(t, func() { WithBlockTime(ctx, now) })

	ctx2 := WithLogInfo(ctx, "foo", "bar")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))

	assert.Panics(t, func() { GetChainID(ctx) })
	ctx2 = WithChainID(ctx, "my-chain")
	assert.Equal(t, "my-chain", GetChainID(ctx2))
	assert.Panics(t, func() { WithChainID(ctx2, "my-chain") })
}

func TestBlockTimeMissing(t *testing.T) {
	_, err := BlockTime(context.Background())
	assert.True(t, errors.ErrHuman.Is(err))

	ctx := WithBlockTime(context.Background(), time.Unix(100, 999))
	now, err := CurrentTime(ctx)
	assert.NoError(t, err)
	assert.Equal(t, UnixTime(100), now)
}

func TestChainID(t *testing.T) {
	cases := []struct {
		chainID string
		valid   bool
	}{
		{"", false},
		{"foo", false},
		{"special", true},
		{"wish-YOU-88", true},
		{"invalid;;chars", false},
		{"this-chain-id-is-way-too-long", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, IsValidChainID(tc.chainID), tc.chainID)
	}
}
