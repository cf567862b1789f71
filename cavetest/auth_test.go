package cavetest

import (
	"context"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	c1 := SequenceCondition()
	c2 := SequenceCondition()
	c3 := SequenceCondition()

	cases := map[string]struct {
		Auth    *Auth
		Granted []cave.Condition
		Denied  []cave.Condition
	}{
		"single signer": {
			Auth:    &Auth{Signer: c1},
			Granted: []cave.Condition{c1},
			Denied:  []cave.Condition{c2, c3},
		},
		"many signers": {
			Auth:    &Auth{Signers: []cave.Condition{c1, c2}},
			Granted: []cave.Condition{c1, c2},
			Denied:  []cave.Condition{c3},
		},
		"both": {
			Auth:    &Auth{Signer: c3, Signers: []cave.Condition{c1}},
			Granted: []cave.Condition{c1, c3},
			Denied:  []cave.Condition{c2},
		},
		"nobody": {
			Auth:   &Auth{},
			Denied: []cave.Condition{c1, c2, c3},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			for _, c := range tc.Granted {
				assert.True(t, tc.Auth.HasAddress(ctx, c.Address()))
			}
			for _, c := range tc.Denied {
				assert.False(t, tc.Auth.HasAddress(ctx, c.Address()))
			}
			assert.Len(t, tc.Auth.GetConditions(ctx), len(tc.Granted))
		})
	}
}

func TestCtxAuth(t *testing.T) {
	c1 := SequenceCondition()
	c2 := SequenceCondition()

	auth := &CtxAuth{Key: "auth"}
	ctx := context.Background()
	assert.Empty(t, auth.GetConditions(ctx))
	assert.False(t, auth.HasAddress(ctx, c1.Address()))

	ctx = auth.SetConditions(ctx, c1)
	assert.True(t, auth.HasAddress(ctx, c1.Address()))
	assert.False(t, auth.HasAddress(ctx, c2.Address()))
}
