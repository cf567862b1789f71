package tunnel

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/gconf"
)

const confPkg = "tunnel"

// Configuration of the tunnel extension.
type Configuration struct {
	// StorageDeposit is charged from the source account when a tunnel is
	// paid and refunded to the authorizer of the payout. Zero disables
	// the deposit.
	StorageDeposit coin.Coin `json:"storage_deposit"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.StorageDeposit.IsZero() {
		return nil
	}
	if err := c.StorageDeposit.Validate(); err != nil {
		return errors.Field("StorageDeposit", err, "")
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	if !c.StorageDeposit.IsZero() {
		if err := e.Message(1, &c.StorageDeposit); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			d.Message(&c.StorageDeposit)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// loadConf returns the stored configuration. An unconfigured extension
// uses the zero configuration.
func loadConf(db cave.ReadOnlyKVStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return Configuration{}, nil
	default:
		return conf, err
	}
}
