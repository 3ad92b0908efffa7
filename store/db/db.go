package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/store"
	"github.com/hrygo/linguapet/store/db/memory"
	"github.com/hrygo/linguapet/store/db/postgres"
	"github.com/hrygo/linguapet/store/db/sqlite"
)

// ErrUnknownDriver is returned for an unsupported profile.Driver.
var ErrUnknownDriver = errors.New("unknown db driver")

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "memory":
		driver = memory.NewDB()
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
