package main

import (
	"sort"
	"strings"
)

var commandNames = []string{
	"assocs", "belongs_to", "columns", "connect", "disconnect", "engine",
	"from", "has_many", "has_one", "help", "include", "joins", "order",
	"reset", "reverse", "run", "select", "softdelete", "sql", "tables",
	"through", "where",
}

var engineNames = []string{"mysql", "postgres", "sqlite"}
var whereOps = []string{"!=", "<", "<=", "=", ">", ">=", "like"}
var orderDirs = []string{"asc", "desc"}

// sessionCompleter implements readline's AutoCompleter interface, completing
// command names, schema tables and columns, and declared association keys.
type sessionCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
func (c *sessionCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	candidates, prefix := c.candidates(string(line[:pos]))
	for _, cand := range candidates {
		newLine = append(newLine, []rune(cand[len(prefix):]+" "))
	}
	length = len([]rune(prefix))
	return
}

// candidates picks the completion set from the command and the index of the
// argument under the cursor.
func (c *sessionCompleter) candidates(line string) ([]string, string) {
	fields := strings.Fields(line)
	trailing := line == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t")

	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		var prefix string
		if len(fields) == 1 {
			prefix = fields[0]
		}
		return filterPrefix(commandNames, prefix), prefix
	}

	cmd := strings.ToLower(fields[0])
	// arg is the 1-based index of the argument being completed.
	arg := len(fields)
	prefix := ""
	if !trailing {
		arg--
		prefix = fields[len(fields)-1]
	}

	var candidates []string
	switch cmd {
	case "engine":
		if arg == 1 {
			candidates = engineNames
		}
	case "from", "columns":
		if arg == 1 {
			candidates = c.tableNames()
		}
	case "belongs_to", "has_one", "has_many":
		switch arg {
		case 2, 3:
			candidates = c.tableNames()
		case 4:
			candidates = []string{"via"}
		}
	case "include", "joins":
		switch arg {
		case 1:
			candidates = c.assocKeys()
		case 2:
			candidates = []string{"optional"}
		}
	case "through":
		if arg == 2 || arg == 3 {
			candidates = c.assocKeys()
		}
	case "select":
		candidates = append([]string{"*"}, c.rootColumns()...)
	case "where":
		switch arg {
		case 1:
			candidates = c.rootColumns()
		case 2:
			candidates = whereOps
		}
	case "order":
		switch arg {
		case 1:
			candidates = c.rootColumns()
		case 2:
			candidates = orderDirs
		}
	case "softdelete":
		if arg == 1 {
			candidates = []string{"off"}
		}
	case "run":
		if arg == 1 {
			candidates = []string{"limit"}
		}
	}
	return filterPrefix(candidates, prefix), prefix
}

func (c *sessionCompleter) tableNames() []string {
	if c.sess.conn == nil {
		return nil
	}
	var names []string
	for _, t := range c.sess.conn.schema.Tables() {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

func (c *sessionCompleter) assocKeys() []string {
	keys := make([]string, len(c.sess.assocOrder))
	copy(keys, c.sess.assocOrder)
	sort.Strings(keys)
	return keys
}

func (c *sessionCompleter) rootColumns() []string {
	if c.sess.conn == nil || c.sess.rootTable == "" {
		return nil
	}
	cols, err := c.sess.conn.schema.Columns(c.sess.rootTable)
	if err != nil {
		return nil
	}
	return cols
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		result := make([]string, len(items))
		copy(result, items)
		return result
	}
	lower := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lower) {
			result = append(result, item)
		}
	}
	return result
}
