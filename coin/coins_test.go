package coin

import (
	"testing"

	"github.com/cavelabs/cave/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinsAddSubtract(t *testing.T) {
	cs, err := CombineCoins(NewCoin(5, "ETH"), NewCoin(3, "CAVE"), NewCoin(2, "ETH"), NewCoin(0, "BTC"))
	require.NoError(t, err)
	require.NoError(t, cs.Validate())
	assert.Equal(t, "3 CAVE; 7 ETH", cs.String())

	less, err := cs.Subtract(NewCoin(3, "CAVE"))
	require.NoError(t, err)
	assert.Equal(t, "7 ETH", less.String())
	// The original set is not modified.
	assert.Equal(t, NewCoin(3, "CAVE"), cs.Balance("CAVE"))

	_, err = less.Subtract(NewCoin(1, "CAVE"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
	_, err = less.Subtract(NewCoin(8, "ETH"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	assert.True(t, cs.Contains(NewCoin(7, "ETH")))
	assert.False(t, cs.Contains(NewCoin(1, "BTC")))
	assert.Equal(t, NewCoin(0, "BTC"), cs.Balance("BTC"))
}

func TestCoinsValidate(t *testing.T) {
	cases := map[string]struct {
		coins   Coins
		wantErr *errors.Error
	}{
		"empty": {
			coins: nil,
		},
		"sorted": {
			coins: Coins{NewCoinp(1, "BTC"), NewCoinp(1, "ETH")},
		},
		"unsorted": {
			coins:   Coins{NewCoinp(1, "ETH"), NewCoinp(1, "BTC")},
			wantErr: errors.ErrState,
		},
		"duplicated": {
			coins:   Coins{NewCoinp(1, "ETH"), NewCoinp(1, "ETH")},
			wantErr: errors.ErrState,
		},
		"zero": {
			coins:   Coins{NewCoinp(0, "ETH")},
			wantErr: errors.ErrAmount,
		},
		"nil coin": {
			coins:   Coins{nil},
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.coins.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestCoinsSerialization(t *testing.T) {
	cs, err := CombineCoins(NewCoin(3, "CAVE"), NewCoin(7, "ETH"))
	require.NoError(t, err)
	raw, err := cs.Marshal()
	require.NoError(t, err)

	var got Coins
	require.NoError(t, got.Unmarshal(raw))
	assert.True(t, cs.Equals(got))
}
