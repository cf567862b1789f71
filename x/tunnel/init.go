package tunnel

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/gconf"
)

// Initializer loads the tunnel configuration from the genesis file.
type Initializer struct{}

var _ cave.Initializer = Initializer{}

func (Initializer) FromGenesis(opts cave.Options, db cave.KVStore) error {
	return gconf.InitConfig(db, opts, confPkg, &Configuration{})
}
