package main

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/app"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/dlock"
	"github.com/cavelabs/cave/dlock/mem"
	dlockredis "github.com/cavelabs/cave/dlock/redis"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store/iavl"
	backend "github.com/redis/go-redis/v9"
	"github.com/tendermint/tendermint/libs/log"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config.yaml"
	dataDir    = "data"
	keysDir    = "keys"
)

// Config is the content of config.yaml in the home directory.
type Config struct {
	ChainID  string     `yaml:"chain_id"`
	Debug    bool       `yaml:"debug"`
	LogLevel string     `yaml:"log_level"`
	Lock     LockConfig `yaml:"lock"`
}

// LockConfig selects the lock service holding per-vault locks during a
// delivery. The ledger directory admits a single process, and deliveries in
// it are already serialized, so the backend only matters to other clients
// sharing the lock keys.
type LockConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	Prefix    string `yaml:"prefix"`
}

// DefaultConfig returns the configuration written by init.
func DefaultConfig(chainID string) *Config {
	return &Config{
		ChainID:  chainID,
		LogLevel: "error",
		Lock: LockConfig{
			Backend: "mem",
			Prefix:  "cave:",
		},
	}
}

// Validate ensures the configuration can be used to open the ledger.
func (c *Config) Validate() error {
	if !cave.IsValidChainID(c.ChainID) {
		return errors.Field("chain_id", errors.ErrInput, "invalid chain id %q", c.ChainID)
	}
	switch c.Lock.Backend {
	case "mem":
	case "redis":
		if c.Lock.RedisAddr == "" {
			return errors.Field("lock.redis_addr", errors.ErrEmpty, "required by the redis backend")
		}
	default:
		return errors.Field("lock.backend", errors.ErrInput, "unknown backend %q", c.Lock.Backend)
	}
	return nil
}

func (e *env) loadConfig() (*Config, error) {
	raw, err := ioutil.ReadFile(filepath.Join(e.home, configFile))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "configuration: %s (run init first)", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "configuration: %s", err)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	return &c, nil
}

func (e *env) saveConfig(c *Config) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := os.MkdirAll(e.home, 0700); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := ioutil.WriteFile(filepath.Join(e.home, configFile), raw, 0600); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return nil
}

// session is an open ledger. Close must be called to release the store.
type session struct {
	conf   *Config
	ledger *app.Ledger
	close  func()
}

func (s *session) Close() {
	s.close()
}

func (e *env) openLedger(c *Config) (*session, error) {
	if err := os.MkdirAll(e.home, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	db, err := iavl.NewCommitStore(e.home, dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger")
	}
	locker, closeLocker, err := newLocker(c.Lock)
	if err != nil {
		db.Close()
		return nil, err
	}
	ledger, err := app.NewLedger(db, locker)
	if err != nil {
		db.Close()
		closeLocker()
		return nil, err
	}
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		db.Close()
		closeLocker()
		return nil, err
	}
	ledger.WithLogger(logger)
	if e.now != 0 {
		at := time.Unix(e.now, 0).UTC()
		ledger.WithClock(app.ClockFunc(func() time.Time { return at }))
	}
	return &session{
		conf:   c,
		ledger: ledger,
		close: func() {
			db.Close()
			closeLocker()
		},
	}, nil
}

// open loads the configuration and opens the ledger it describes.
func (e *env) open() (*session, error) {
	c, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return e.openLedger(c)
}

func newLocker(c LockConfig) (dlock.Locker, func(), error) {
	switch c.Backend {
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: c.RedisAddr})
		return dlockredis.NewLocker(client, c.Prefix), func() { _ = client.Close() }, nil
	case "mem", "":
		return mem.NewLocker(), func() {}, nil
	default:
		return nil, nil, errors.Wrapf(errors.ErrInput, "unknown lock backend %q", c.Backend)
	}
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	if level == "" {
		return logger, nil
	}
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, allow), nil
}

func (e *env) keyPath(name string) string {
	return filepath.Join(e.home, keysDir, name+".key")
}

func (e *env) loadKey(name string) (*crypto.PrivateKey, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "key name is required")
	}
	return crypto.LoadKey(e.keyPath(name))
}

// submit signs msg with the named key and delivers it.
func (s *session) submit(ctx context.Context, key *crypto.PrivateKey, msg cave.Msg) (*cave.DeliverResult, error) {
	seq, err := s.ledger.NextSequence(key.PublicKey().Address())
	if err != nil {
		return nil, errors.Wrap(err, "sequence")
	}
	tx := app.NewTx(msg)
	if err := tx.Sign(key, s.conf.ChainID, seq); err != nil {
		return nil, err
	}
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "serialize transaction")
	}
	res, err := s.ledger.Submit(ctx, raw)
	if err != nil {
		code, info := errors.ABCIInfo(err, s.conf.Debug)
		return nil, errors.Wrapf(err, "code %d: %s", code, info)
	}
	return res, nil
}
