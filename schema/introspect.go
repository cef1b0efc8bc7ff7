package schema

import (
	"database/sql"
	"fmt"
)

// Introspect loads table, column, and foreign-key metadata from a live
// connection. engine selects the catalog queries: "postgres", "mysql", or
// "sqlite". The caller owns the *sql.DB and must have registered a driver.
func Introspect(db *sql.DB, engine string) (*Database, error) {
	switch engine {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("schema: unsupported engine %q", engine)
	}

	names, err := tableNames(db, engine)
	if err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		cols, err := tableColumns(db, engine, name)
		if err != nil {
			return nil, fmt.Errorf("schema: columns of %q: %w", name, err)
		}
		fks, err := tableForeignKeys(db, engine, name)
		if err != nil {
			return nil, fmt.Errorf("schema: foreign keys of %q: %w", name, err)
		}
		tables = append(tables, &Table{Name: name, Columns: cols, ForeignKeys: fks})
	}
	return NewDatabase(tables...), nil
}

func tableNames(db *sql.DB, engine string) ([]string, error) {
	var query string
	switch engine {
	case "postgres":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE' ORDER BY table_name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case "sqlite":
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	return queryStringColumn(db, query)
}

func tableColumns(db *sql.DB, engine, table string) ([]string, error) {
	var query string
	var param any = table
	switch engine {
	case "postgres":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	case "mysql":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	case "sqlite":
		query = "SELECT name FROM pragma_table_info(?)"
	}
	return queryStringColumn(db, query, param)
}

// fkRow is one column pair of one constraint, before grouping. implicitPK
// marks rows whose destination column must be resolved from the referenced
// table's primary key.
type fkRow struct {
	constraint string
	dest       string
	origin     string
	destCol    string
	implicitPK bool
	seq        int
}

func tableForeignKeys(db *sql.DB, engine, table string) ([]ForeignKey, error) {
	var query string
	var param any = table
	switch engine {
	case "postgres":
		query = `SELECT tc.constraint_name, ccu.table_name, kcu.column_name, ccu.column_name, kcu.ordinal_position
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public' AND tc.table_name = $1
ORDER BY tc.constraint_name, kcu.ordinal_position`
	case "mysql":
		query = `SELECT constraint_name, referenced_table_name, column_name, referenced_column_name, ordinal_position
FROM information_schema.key_column_usage
WHERE table_schema = DATABASE() AND table_name = ? AND referenced_table_name IS NOT NULL
ORDER BY constraint_name, ordinal_position`
	case "sqlite":
		query = `SELECT CAST(id AS TEXT), "table", "from", "to", seq FROM pragma_foreign_key_list(?) ORDER BY id, seq`
	}

	rows, err := db.Query(query, param)
	if err != nil {
		return nil, err
	}
	raw, err := collectForeignKeyRows(rows)
	if err != nil {
		return nil, err
	}
	if err := resolveImplicitDestinations(db, raw); err != nil {
		return nil, err
	}
	return groupForeignKeys(raw), nil
}

// collectForeignKeyRows scans the per-column constraint rows. SQLite reports
// a NULL destination column when a foreign key references the destination's
// implicit primary key ("team_id INTEGER REFERENCES team"); such rows are
// marked for resolution once the cursor is closed.
func collectForeignKeyRows(rows *sql.Rows) ([]fkRow, error) {
	defer func() { _ = rows.Close() }()
	var raw []fkRow
	for rows.Next() {
		var r fkRow
		var destCol sql.NullString
		if err := rows.Scan(&r.constraint, &r.dest, &r.origin, &destCol, &r.seq); err != nil {
			return nil, err
		}
		if destCol.Valid {
			r.destCol = destCol.String
		} else {
			r.implicitPK = true
		}
		raw = append(raw, r)
	}
	return raw, rows.Err()
}

// resolveImplicitDestinations fills in the destination columns of
// implicit-primary-key references, mapping each origin column to the
// referenced table's primary key by position. Runs after the constraint
// cursor is closed so the pragma queries do not contend for the connection.
func resolveImplicitDestinations(db *sql.DB, raw []fkRow) error {
	var cache map[string][]string
	for i := range raw {
		if !raw[i].implicitPK {
			continue
		}
		if cache == nil {
			cache = make(map[string][]string)
		}
		pk, ok := cache[raw[i].dest]
		if !ok {
			var err error
			pk, err = queryStringColumn(db,
				"SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk", raw[i].dest)
			if err != nil {
				return err
			}
			cache[raw[i].dest] = pk
		}
		if raw[i].seq >= len(pk) {
			return fmt.Errorf("%q has no primary key column for reference from %q", raw[i].dest, raw[i].origin)
		}
		raw[i].destCol = pk[raw[i].seq]
	}
	return nil
}

// groupForeignKeys folds per-column rows into ForeignKey values, keeping
// column order within each constraint and the catalog queries' constraint
// order.
func groupForeignKeys(raw []fkRow) []ForeignKey {
	byName := make(map[string]*ForeignKey)
	var order []string
	for _, r := range raw {
		fk, ok := byName[r.constraint]
		if !ok {
			fk = &ForeignKey{Name: r.constraint, To: r.dest}
			byName[r.constraint] = fk
			order = append(order, r.constraint)
		}
		fk.Pairs = append(fk.Pairs, ColumnPair{Origin: r.origin, Destination: r.destCol})
	}
	out := make([]ForeignKey, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func queryStringColumn(db *sql.DB, query string, params ...any) ([]string, error) {
	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
