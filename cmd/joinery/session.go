package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bawdo/joinery/managers"
	"github.com/bawdo/joinery/nodes"
	"github.com/bawdo/joinery/plugins/softdelete"
	"github.com/bawdo/joinery/relations"
	"github.com/bawdo/joinery/schema"
	"github.com/bawdo/joinery/visitors"
)

var (
	errNoRequest    = errors.New("no request started (use 'from <table>' first)")
	errNotConnected = errors.New("not connected (use 'connect <dsn>')")
)

// Session holds the REPL state: the active engine and visitor, the live
// connection with its introspected schema, declared associations, and the
// request currently being composed.
type Session struct {
	engine  string
	visitor nodes.Visitor
	conn    *dbConn
	lastDSN string

	assocs     map[string]relations.Association
	assocOrder []string

	rootTable  string
	request    relations.Request
	softDelete *softdelete.SoftDelete

	out io.Writer
}

// NewSession creates a session with the given SQL dialect.
func NewSession(engine string, out io.Writer) *Session {
	s := &Session{
		assocs: make(map[string]relations.Association),
		out:    out,
	}
	s.setEngine(engine)
	return s
}

func (s *Session) setEngine(engine string) {
	s.engine = engine
	switch engine {
	case "mysql":
		s.visitor = visitors.NewMySQLVisitor()
	case "sqlite":
		s.visitor = visitors.NewSQLiteVisitor()
	default:
		s.visitor = visitors.NewPostgresVisitor()
	}
}

// Execute parses and runs one REPL command line.
func (s *Session) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help":
		return s.cmdHelp()
	case "connect":
		return s.cmdConnect(args)
	case "disconnect":
		return s.cmdDisconnect()
	case "engine":
		return s.cmdEngine(args)
	case "tables":
		return s.cmdTables()
	case "columns":
		return s.cmdColumns(args)
	case "belongs_to":
		return s.cmdDirect(cmd, args)
	case "has_one":
		return s.cmdDirect(cmd, args)
	case "has_many":
		return s.cmdDirect(cmd, args)
	case "through":
		return s.cmdThrough(args)
	case "assocs":
		return s.cmdAssocs()
	case "from":
		return s.cmdFrom(args)
	case "include":
		return s.cmdCompose(args, true)
	case "joins":
		return s.cmdCompose(args, false)
	case "select":
		return s.cmdSelect(args)
	case "where":
		return s.cmdWhere(args)
	case "order":
		return s.cmdOrder(args)
	case "reverse":
		return s.cmdReverse()
	case "softdelete":
		return s.cmdSoftDelete(args)
	case "sql":
		return s.cmdSQL()
	case "run":
		return s.cmdRun(args)
	case "reset":
		s.rootTable = ""
		s.request = relations.Request{}
		return nil
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func (s *Session) cmdHelp() error {
	fmt.Fprint(s.out, `Commands:
  connect <dsn>                     connect and introspect the schema
  disconnect                        close the connection
  engine <postgres|mysql|sqlite>    switch SQL dialect
  tables                            list tables
  columns <table>                   list a table's columns

  belongs_to <key> <origin> <table> [via <fk>]   declare a belongs-to
  has_one    <key> <origin> <table> [via <fk>]   declare a has-one
  has_many   <key> <origin> <table> [via <fk>]   declare a has-many
  through    <key> <pivot-key> <target-key>      declare a through assoc
  assocs                            list declared associations

  from <table>                      start a request
  include <key> [optional]          compose an association (with columns)
  joins <key> [optional]            compose for filtering only
  select <col> ...                  replace the root projection
  where <col> <op> <value>          add a root filter (= != > >= < <= like)
  order <col> [asc|desc]            replace the root ordering
  reverse                           reverse the ordering
  softdelete [<column>|off]         filter soft-deleted rows on every table
  sql                               print SQL and bind parameters
  run [limit <n>]                   execute and print nested records
  reset                             discard the current request
`)
	return nil
}

func (s *Session) cmdConnect(args []string) error {
	dsn := s.lastDSN
	if len(args) > 0 {
		dsn = strings.Join(args, " ")
	}
	if dsn == "" {
		return errors.New("usage: connect <dsn>")
	}
	if s.conn != nil {
		_ = s.conn.close()
		s.conn = nil
	}
	conn, err := connect(s.engine, dsn)
	if err != nil {
		return err
	}
	s.conn = conn
	s.lastDSN = dsn
	fmt.Fprintf(s.out, "  Connected (%s), %d tables\n", s.engine, len(conn.schema.Tables()))
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errNotConnected
	}
	err := s.conn.close()
	s.conn = nil
	return err
}

func (s *Session) cmdEngine(args []string) error {
	if len(args) != 1 || !isValidEngine(args[0]) {
		return errors.New("usage: engine <postgres|mysql|sqlite>")
	}
	if s.conn != nil {
		return errors.New("disconnect before switching engines")
	}
	s.setEngine(strings.ToLower(args[0]))
	fmt.Fprintf(s.out, "  Engine: %s\n", s.engine)
	return nil
}

func (s *Session) cmdTables() error {
	if s.conn == nil {
		return errNotConnected
	}
	for _, t := range s.conn.schema.Tables() {
		fmt.Fprintf(s.out, "  %s (%d columns, %d foreign keys)\n", t.Name, len(t.Columns), len(t.ForeignKeys))
	}
	return nil
}

func (s *Session) cmdColumns(args []string) error {
	if s.conn == nil {
		return errNotConnected
	}
	if len(args) != 1 {
		return errors.New("usage: columns <table>")
	}
	cols, err := s.conn.schema.Columns(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "  %s\n", strings.Join(cols, ", "))
	return nil
}

// cmdDirect declares a belongs_to / has_one / has_many association:
//
//	belongs_to <key> <origin> <table> [via <fk-name>]
func (s *Session) cmdDirect(kind string, args []string) error {
	if s.conn == nil {
		return errNotConnected
	}
	if len(args) != 3 && !(len(args) == 5 && args[3] == "via") {
		return fmt.Errorf("usage: %s <key> <origin> <table> [via <fk-name>]", kind)
	}
	key, origin, table := args[0], args[1], args[2]

	// A belongs-to key lives on the origin; the others live on the joined
	// table and point back at the origin.
	fkOwner, fkDest := table, origin
	if kind == "belongs_to" {
		fkOwner, fkDest = origin, table
	}

	var fk schema.ForeignKey
	var err error
	if len(args) == 5 {
		fk, err = s.conn.schema.NamedForeignKey(fkOwner, args[4])
	} else {
		fk, err = s.conn.schema.ForeignKeyTo(fkOwner, fkDest)
	}
	if err != nil {
		return err
	}

	var assoc relations.Association
	switch kind {
	case "belongs_to":
		assoc = relations.BelongsTo(key, fk)
	case "has_one":
		assoc = relations.HasOne(key, table, fk)
	default:
		assoc = relations.HasMany(key, table, fk)
	}
	s.declare(key, assoc)
	fmt.Fprintf(s.out, "  %s %q: %s -> %s\n", kind, key, origin, table)
	return nil
}

// cmdThrough declares a through association from two declared ones:
//
//	through <key> <pivot-key> <target-key>
func (s *Session) cmdThrough(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: through <key> <pivot-key> <target-key>")
	}
	key := args[0]
	pivot, ok := s.assocs[args[1]]
	if !ok {
		return fmt.Errorf("unknown association %q", args[1])
	}
	target, ok := s.assocs[args[2]]
	if !ok {
		return fmt.Errorf("unknown association %q", args[2])
	}
	s.declare(key, relations.HasManyThrough(key, pivot, target))
	fmt.Fprintf(s.out, "  through %q: %s -> %s\n", key, args[1], args[2])
	return nil
}

func (s *Session) declare(key string, assoc relations.Association) {
	if _, seen := s.assocs[key]; !seen {
		s.assocOrder = append(s.assocOrder, key)
	}
	s.assocs[key] = assoc
}

func (s *Session) cmdAssocs() error {
	if len(s.assocOrder) == 0 {
		fmt.Fprintln(s.out, "  (none)")
		return nil
	}
	for _, key := range s.assocOrder {
		fmt.Fprintf(s.out, "  %s\n", key)
	}
	return nil
}

func (s *Session) cmdFrom(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: from <table>")
	}
	s.rootTable = args[0]
	s.request = relations.NewRequest(args[0])
	return nil
}

func (s *Session) cmdCompose(args []string, include bool) error {
	if s.rootTable == "" {
		return errNoRequest
	}
	if len(args) < 1 {
		return errors.New("usage: include|joins <key> [optional]")
	}
	assoc, ok := s.assocs[args[0]]
	if !ok {
		return fmt.Errorf("unknown association %q", args[0])
	}
	optional := len(args) > 1 && strings.ToLower(args[1]) == "optional"

	switch {
	case include && optional:
		s.request = s.request.IncludingOptional(assoc)
	case include:
		s.request = s.request.IncludingRequired(assoc)
	case optional:
		s.request = s.request.JoiningOptional(assoc)
	default:
		s.request = s.request.JoiningRequired(assoc)
	}
	return s.request.Err()
}

func (s *Session) cmdSelect(args []string) error {
	if s.rootTable == "" {
		return errNoRequest
	}
	if len(args) == 0 {
		return errors.New("usage: select <col> ...")
	}
	table := nodes.NewTable(s.rootTable)
	selection := make([]nodes.Node, len(args))
	for i, col := range args {
		if col == "*" {
			selection[i] = table.Star()
			continue
		}
		selection[i] = table.Col(col)
	}
	s.request = s.request.Select(selection...)
	return s.request.Err()
}

func (s *Session) cmdWhere(args []string) error {
	if s.rootTable == "" {
		return errNoRequest
	}
	if len(args) < 3 {
		return errors.New("usage: where <col> <op> <value>")
	}
	col := nodes.NewTable(s.rootTable).Col(args[0])
	value := nodes.NewBindParam(parseValue(strings.Join(args[2:], " ")))

	var condition nodes.Node
	switch args[1] {
	case "=":
		condition = col.Eq(value)
	case "!=":
		condition = col.NotEq(value)
	case ">":
		condition = col.Gt(value)
	case ">=":
		condition = col.GtEq(value)
	case "<":
		condition = col.Lt(value)
	case "<=":
		condition = col.LtEq(value)
	case "like":
		condition = col.Like(value)
	default:
		return fmt.Errorf("unknown operator %q", args[1])
	}
	s.request = s.request.Where(condition)
	return s.request.Err()
}

func (s *Session) cmdOrder(args []string) error {
	if s.rootTable == "" {
		return errNoRequest
	}
	if len(args) < 1 {
		return errors.New("usage: order <col> [asc|desc]")
	}
	col := nodes.NewTable(s.rootTable).Col(args[0])
	term := nodes.Node(col.Asc())
	if len(args) > 1 && strings.ToLower(args[1]) == "desc" {
		term = col.Desc()
	}
	s.request = s.request.Order(relations.OrderBy(term))
	return s.request.Err()
}

func (s *Session) cmdReverse() error {
	if s.rootTable == "" {
		return errNoRequest
	}
	s.request = s.request.Reversed()
	return s.request.Err()
}

// cmdSoftDelete toggles the soft-delete transformer. With no argument the
// default deleted_at column is used; "off" disables it again.
func (s *Session) cmdSoftDelete(args []string) error {
	switch {
	case len(args) == 0:
		s.softDelete = softdelete.New()
		fmt.Fprintln(s.out, "  softdelete: on (deleted_at)")
	case len(args) == 1 && strings.ToLower(args[0]) == "off":
		s.softDelete = nil
		fmt.Fprintln(s.out, "  softdelete: off")
	case len(args) == 1:
		s.softDelete = softdelete.New(softdelete.WithColumn(args[0]))
		fmt.Fprintf(s.out, "  softdelete: on (%s)\n", args[0])
	default:
		return errors.New("usage: softdelete [<column>|off]")
	}
	return nil
}

// manager builds the statement for the current request and applies any
// session-level transformers.
func (s *Session) manager() (*managers.SelectManager, *relations.RowAdapter, error) {
	m, adapter, err := s.request.Manager(s.conn.schema)
	if err != nil {
		return nil, nil, err
	}
	if s.softDelete != nil {
		m.Use(s.softDelete)
	}
	return m, adapter, nil
}

func (s *Session) cmdSQL() error {
	if s.conn == nil {
		return errNotConnected
	}
	if s.rootTable == "" {
		return errNoRequest
	}
	m, _, err := s.manager()
	if err != nil {
		return err
	}
	sqlStr, params, err := m.ToSQL(s.visitor)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "  %s\n", sqlStr)
	if len(params) > 0 {
		fmt.Fprintf(s.out, "  params: %v\n", params)
	}
	return nil
}

func (s *Session) cmdRun(args []string) error {
	if s.conn == nil {
		return errNotConnected
	}
	if s.rootTable == "" {
		return errNoRequest
	}

	limit := maxRows
	if len(args) == 2 && strings.ToLower(args[0]) == "limit" {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return errors.New("usage: run [limit <n>]")
		}
		limit = n
	}

	m, adapter, err := s.manager()
	if err != nil {
		return err
	}
	m.Limit(limit)
	sqlStr, params, err := m.ToSQL(s.visitor)
	if err != nil {
		return err
	}

	rows, err := s.conn.db.Query(sqlStr, params...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records, err := relations.ScanRows(rows, adapter)
	if err != nil {
		return err
	}
	for i := range records {
		normalizeRecord(records[i])
	}

	encoded, err := json.MarshalIndent(records, "  ", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "  %s\n  (%d rows)\n", encoded, len(records))
	return nil
}

// normalizeRecord converts driver byte slices to strings so the JSON output
// is readable, recursing into nested records.
func normalizeRecord(r relations.Record) {
	for k, v := range r {
		switch val := v.(type) {
		case []byte:
			r[k] = string(val)
		case relations.Record:
			normalizeRecord(val)
		}
	}
}

// parseValue interprets a literal typed at the prompt: int, float, bool, or
// (optionally quoted) string.
func parseValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return raw
}
