// Package joinery composes declared table relationships into single SQL
// queries that fetch a root record together with its related records in one
// round trip, and decodes the flat result rows back into nested objects.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/joinery/relations (associations, join trees, row decoding)
//   - github.com/bawdo/joinery/schema (schema model and introspection)
//   - github.com/bawdo/joinery/managers (query builders)
//   - github.com/bawdo/joinery/nodes (AST nodes)
//   - github.com/bawdo/joinery/visitors (SQL generation)
//   - github.com/bawdo/joinery/plugins (query transformers)
package joinery

import (
	"database/sql"

	"github.com/bawdo/joinery/nodes"
	"github.com/bawdo/joinery/relations"
	"github.com/bawdo/joinery/schema"
	"github.com/bawdo/joinery/visitors"
)

// --- Composition Types ---

// Request accumulates association compositions over a root table.
type Request = relations.Request

// Association is a declared, reusable relationship between two tables.
type Association = relations.Association

// JoinQuery is one node of a join tree.
type JoinQuery = relations.JoinQuery

// RowAdapter maps a finalized tree onto the flat result row.
type RowAdapter = relations.RowAdapter

// Record is one decoded result object with nested association records.
type Record = relations.Record

// Filter is an immediate or deferred predicate.
type Filter = relations.Filter

// Ordering is an ordered list of ORDER BY terms.
type Ordering = relations.Ordering

// --- Composition Constructors ---

// NewRequest starts a request over one root table.
func NewRequest(table string) relations.Request {
	return relations.NewRequest(table)
}

// BelongsTo declares an association where the origin holds the foreign key.
func BelongsTo(key string, fk schema.ForeignKey) relations.DirectJoin {
	return relations.BelongsTo(key, fk)
}

// HasOne declares a to-one association whose foreign key lives on the
// joined table.
func HasOne(key, table string, fk schema.ForeignKey) relations.DirectJoin {
	return relations.HasOne(key, table, fk)
}

// HasMany declares a to-many association whose foreign key lives on the
// joined table.
func HasMany(key, table string, fk schema.ForeignKey) relations.DirectJoin {
	return relations.HasMany(key, table, fk)
}

// HasOneThrough declares a to-one association reached across a pivot.
func HasOneThrough(key string, pivot, target relations.Association) relations.ThroughPivot {
	return relations.HasOneThrough(key, pivot, target)
}

// HasManyThrough declares a to-many association reached across a pivot.
func HasManyThrough(key string, pivot, target relations.Association) relations.ThroughPivot {
	return relations.HasManyThrough(key, pivot, target)
}

// Where wraps an immediate predicate node as a Filter.
func Where(condition nodes.Node) relations.Filter {
	return relations.FilterNode(condition)
}

// OrderBy builds an Ordering from immediate ordering terms.
func OrderBy(terms ...nodes.Node) relations.Ordering {
	return relations.OrderBy(terms...)
}

// --- Core Node Types ---

// Table represents a SQL table reference.
type Table = nodes.Table

// Attribute represents a column reference (e.g., table.column).
type Attribute = nodes.Attribute

// Node is the base interface all AST nodes implement.
type Node = nodes.Node

// --- Common Node Constructors ---

// NewTable creates a new table reference.
func NewTable(name string) *nodes.Table {
	return nodes.NewTable(name)
}

// Literal creates a SQL literal node (e.g., numbers, strings).
func Literal(value any) nodes.Node {
	return nodes.Literal(value)
}

// BindParam creates a parameterised placeholder (e.g., $1, ?).
func BindParam(value any) *nodes.BindParamNode {
	return nodes.NewBindParam(value)
}

// Star creates an unqualified star (*) for SELECT *.
func Star() *nodes.StarNode {
	return nodes.Star()
}

// ScanRows drains a result set and decodes every row into a nested Record.
func ScanRows(rows *sql.Rows, adapter *relations.RowAdapter) ([]relations.Record, error) {
	return relations.ScanRows(rows, adapter)
}

// --- Schema Types ---

// Database is the schema model composed queries resolve against.
type Database = schema.Database

// ForeignKey is a resolved foreign-key relationship.
type ForeignKey = schema.ForeignKey

// NewDatabase builds a schema model from declared tables.
func NewDatabase(tables ...*schema.Table) *schema.Database {
	return schema.NewDatabase(tables...)
}

// Introspect reads table, column, and foreign-key metadata from a live
// connection. Supported engines are "postgres", "mysql", and "sqlite".
func Introspect(db *sql.DB, engine string) (*schema.Database, error) {
	return schema.Introspect(db, engine)
}

// --- Visitor Types ---

// SQLiteVisitor generates SQLite-compatible SQL.
type SQLiteVisitor = visitors.SQLiteVisitor

// PostgresVisitor generates PostgreSQL-compatible SQL.
type PostgresVisitor = visitors.PostgresVisitor

// MySQLVisitor generates MySQL-compatible SQL.
type MySQLVisitor = visitors.MySQLVisitor

// --- Visitor Constructors ---

// NewSQLiteVisitor creates a new SQLite visitor.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// NewPostgresVisitor creates a new PostgreSQL visitor.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor creates a new MySQL visitor.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// --- Visitor Options ---

// WithParams enables parameterisation mode for visitors.
//
// Note: Parameterisation is now enabled by default. This option is kept
// for backwards compatibility and has no effect.
func WithParams() visitors.Option {
	return visitors.WithParams()
}

// WithoutParams disables parameterised query mode.
//
// ⚠️ WARNING: Disables SQL injection protection. Only use for debugging or when
// you're certain all values are trusted. Production code should NEVER use this option.
func WithoutParams() visitors.Option {
	return visitors.WithoutParams()
}
