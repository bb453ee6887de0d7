package initializers

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

// DB backs the circle activity journal. It stays nil when DB_URL is unset.
var DB *goqu.Database

func ConnectDB(dsn string) error {
	if dsn == "" {
		Log.Info("DB_URL not set, circle activity journal disabled")
		return nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return err
	}

	DB = goqu.New("postgres", db)
	Log.Info("connected to activity journal database")
	return nil
}
