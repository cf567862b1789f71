package utils

import "github.com/cavelabs/cave"

// ActionKey is used by ActionTagger as the key of the tag it appends.
const ActionKey = "action"

// ActionTagger adds a tag `action = msg.Path()` to every successful
// delivery, so clients can search for vault and tunnel operations.
type ActionTagger struct{}

var _ cave.Decorator = ActionTagger{}

// NewActionTagger creates an ActionTagger decorator.
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along.
func (ActionTagger) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Checker) (*cave.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends a tag on the result if there is a success.
func (ActionTagger) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Deliverer) (*cave.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, cave.Tag{Key: ActionKey, Value: msg.Path()})
	return res, nil
}
