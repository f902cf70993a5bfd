package repository

import (
	"film_api/internal/repository/db"

	"github.com/jmoiron/sqlx"
)

// rebind rewrites '?' placeholders into the bind style of dialect's driver.
func rebind(dialect db.Dialect, query string) string {
	return sqlx.Rebind(sqlx.BindType(dialect.DriverName()), query)
}
