// Package schema holds table and foreign-key metadata used to derive join
// conditions. A Database can be declared statically or introspected from a
// live connection.
package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTable is returned when a table name has no metadata.
	ErrUnknownTable = errors.New("schema: unknown table")

	// ErrNoForeignKey is returned when no foreign key links two tables.
	ErrNoForeignKey = errors.New("schema: no foreign key")

	// ErrAmbiguousForeignKey is returned when more than one foreign key links
	// two tables and the caller did not name one explicitly.
	ErrAmbiguousForeignKey = errors.New("schema: ambiguous foreign key")
)

// ColumnPair maps a column on the origin table to the column it references
// on the destination table.
type ColumnPair struct {
	Origin      string
	Destination string
}

// ForeignKey describes one foreign key: the destination table and the
// ordered column mapping. Name is optional and only needed to disambiguate
// multiple keys between the same pair of tables.
type ForeignKey struct {
	Name  string
	To    string
	Pairs []ColumnPair
}

// Table describes one table: its columns in definition order and its
// outgoing foreign keys.
type Table struct {
	Name        string
	Columns     []string
	ForeignKeys []ForeignKey
}

// Database is an ordered collection of table metadata. It implements the
// relations.ResolveContext contract (ColumnCount) so finalized queries can
// compute selection widths against it.
type Database struct {
	tables map[string]*Table
	order  []string
}

// NewDatabase builds a Database from table definitions. Re-declaring a
// table name replaces the earlier definition.
func NewDatabase(tables ...*Table) *Database {
	d := &Database{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, seen := d.tables[t.Name]; !seen {
			d.order = append(d.order, t.Name)
		}
		d.tables[t.Name] = t
	}
	return d
}

// Table returns the metadata for a table name.
func (d *Database) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Tables returns all tables in declaration order.
func (d *Database) Tables() []*Table {
	out := make([]*Table, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tables[name])
	}
	return out
}

// Columns returns the column names of a table in definition order.
func (d *Database) Columns(table string) ([]string, error) {
	t, ok := d.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return t.Columns, nil
}

// ColumnCount returns the number of columns in a table. Finalized queries
// use it to size the column range a "table.*" selection occupies.
func (d *Database) ColumnCount(table string) (int, error) {
	t, ok := d.tables[table]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return len(t.Columns), nil
}

// ForeignKeyTo resolves the foreign key from origin to dest. Exactly one
// key must match; zero matches yield ErrNoForeignKey and several yield
// ErrAmbiguousForeignKey. Both are configuration errors the caller must fix
// before any query is built.
func (d *Database) ForeignKeyTo(origin, dest string) (ForeignKey, error) {
	t, ok := d.tables[origin]
	if !ok {
		return ForeignKey{}, fmt.Errorf("%w: %q", ErrUnknownTable, origin)
	}
	var found []ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.To == dest {
			found = append(found, fk)
		}
	}
	switch len(found) {
	case 0:
		return ForeignKey{}, fmt.Errorf("%w from %q to %q", ErrNoForeignKey, origin, dest)
	case 1:
		return found[0], nil
	default:
		return ForeignKey{}, fmt.Errorf("%w from %q to %q: %d candidates, name one explicitly",
			ErrAmbiguousForeignKey, origin, dest, len(found))
	}
}

// NamedForeignKey resolves a foreign key on origin by constraint name.
func (d *Database) NamedForeignKey(origin, name string) (ForeignKey, error) {
	t, ok := d.tables[origin]
	if !ok {
		return ForeignKey{}, fmt.Errorf("%w: %q", ErrUnknownTable, origin)
	}
	for _, fk := range t.ForeignKeys {
		if fk.Name == name {
			return fk, nil
		}
	}
	return ForeignKey{}, fmt.Errorf("%w named %q on %q", ErrNoForeignKey, name, origin)
}
