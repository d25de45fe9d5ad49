package migrations

import (
	_ "embed"

	"github.com/0xPolygon/cdk-txrelay/db"
	"github.com/0xPolygon/cdk-txrelay/db/types"
)

//go:embed journal0001.sql
var mig0001 string

func RunMigrations(dbPath string) error {
	migrations := []types.Migration{
		{
			ID:  "journal0001",
			SQL: mig0001,
		},
	}
	return db.RunMigrations(dbPath, migrations)
}
