package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/bawdo/joinery/schema"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

const maxRows = 1000

type dbConn struct {
	db     *sql.DB
	dsn    string
	engine string
	schema *schema.Database
}

func connect(engine, dsn string) (*dbConn, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	conn := &dbConn{db: db, dsn: dsn, engine: engine}
	conn.schema, err = schema.Introspect(db, engine)
	if err != nil {
		// Non-fatal: without metadata, association commands will complain
		// until the user reconnects.
		fmt.Fprintf(os.Stderr, "  Note: schema introspection failed: %v\n", err)
		conn.schema = schema.NewDatabase()
	}
	return conn, nil
}

func (c *dbConn) close() error {
	return c.db.Close()
}
