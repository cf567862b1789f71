package utils

import (
	"context"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	key, value := []byte("key"), []byte("value")

	cases := map[string]struct {
		Savepoint Savepoint
		Handler   *cavetest.Handler
		Deliver   bool
		WantErr   *errors.Error
		WantKey   bool
	}{
		"disabled savepoint keeps writes of a failed check": {
			Savepoint: NewSavepoint(),
			Handler:   &cavetest.Handler{Key: key, Write: value, CheckErr: errors.ErrHuman},
			WantErr:   errors.ErrHuman,
			WantKey:   true,
		},
		"failed check is rolled back": {
			Savepoint: NewSavepoint().OnCheck(),
			Handler:   &cavetest.Handler{Key: key, Write: value, CheckErr: errors.ErrHuman},
			WantErr:   errors.ErrHuman,
		},
		"failed deliver is rolled back": {
			Savepoint: NewSavepoint().OnDeliver(),
			Handler:   &cavetest.Handler{Key: key, Write: value, DeliverErr: errors.ErrHuman},
			Deliver:   true,
			WantErr:   errors.ErrHuman,
		},
		"check savepoint does not affect deliver": {
			Savepoint: NewSavepoint().OnCheck(),
			Handler:   &cavetest.Handler{Key: key, Write: value, DeliverErr: errors.ErrHuman},
			Deliver:   true,
			WantErr:   errors.ErrHuman,
			WantKey:   true,
		},
		"success is written": {
			Savepoint: NewSavepoint().OnCheck().OnDeliver(),
			Handler:   &cavetest.Handler{Key: key, Write: value},
			Deliver:   true,
			WantKey:   true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := cavetest.Decorate(tc.Handler, tc.Savepoint)

			var err error
			if tc.Deliver {
				_, err = h.Deliver(context.Background(), db, &cavetest.Tx{})
			} else {
				_, err = h.Check(context.Background(), db, &cavetest.Tx{})
			}
			if tc.WantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.WantErr.Is(err), "%+v", err)
			}
			assert.Equal(t, tc.WantKey, db.Has(key))
		})
	}
}

func TestRecovery(t *testing.T) {
	h := cavetest.Decorate(cavetest.PanicHandler{Value: "boom"}, NewRecovery())
	db := store.MemStore()

	_, err := h.Check(context.Background(), db, nil)
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)

	_, err = h.Deliver(context.Background(), db, nil)
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)
}

func TestLoggingPassesResults(t *testing.T) {
	handler := &cavetest.Handler{
		CheckResult: cave.CheckResult{Log: "checked"},
		DeliverErr:  errors.ErrNotFound,
	}
	h := cavetest.Decorate(handler, NewLogging())
	tx := &cavetest.Tx{Msg: &cavetest.Msg{RoutePath: "vault/create"}}

	res, err := h.Check(context.Background(), store.MemStore(), tx)
	require.NoError(t, err)
	assert.Equal(t, "checked", res.Log)

	_, err = h.Deliver(context.Background(), store.MemStore(), tx)
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
	assert.Equal(t, 2, handler.CallCount())
}

func TestActionTagger(t *testing.T) {
	tx := &cavetest.Tx{Msg: &cavetest.Msg{RoutePath: "tunnel/pay"}}

	cases := map[string]struct {
		Handler  *cavetest.Handler
		Tx       cave.Tx
		WantErr  *errors.Error
		WantTags []cave.Tag
	}{
		"simple call": {
			Handler:  &cavetest.Handler{},
			Tx:       tx,
			WantTags: []cave.Tag{{Key: ActionKey, Value: "tunnel/pay"}},
		},
		"tags are additive": {
			Handler: &cavetest.Handler{
				DeliverResult: cave.DeliverResult{Tags: []cave.Tag{{Key: "vault", Value: "AB"}}},
			},
			Tx:       tx,
			WantTags: []cave.Tag{{Key: "vault", Value: "AB"}, {Key: ActionKey, Value: "tunnel/pay"}},
		},
		"passes through error": {
			Handler: &cavetest.Handler{DeliverErr: errors.ErrHuman},
			Tx:      tx,
			WantErr: errors.ErrHuman,
		},
		"broken transaction": {
			Handler: &cavetest.Handler{},
			Tx:      &cavetest.Tx{Err: errors.ErrMsg},
			WantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := cavetest.Decorate(tc.Handler, NewActionTagger())
			res, err := h.Deliver(context.Background(), store.MemStore(), tc.Tx)
			if tc.WantErr != nil {
				assert.True(t, tc.WantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.WantTags, res.Tags)
		})
	}
}
