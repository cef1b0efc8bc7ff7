package relations

import (
	"database/sql"
)

// Record is one decoded result object: the root (or a nested) row's own
// columns by name, plus one entry per composed association key holding a
// nested Record (or nil when an optional association matched no row).
type Record map[string]any

// DecodeRow slices one flat result row into a nested Record following the
// adapter's column ranges. columns are the statement's result column names,
// values the scanned row, both indexed identically.
//
// A nested scope whose entire column range is NULL decodes to nil: that is
// what an unmatched optional join looks like in the flat row. Pivot levels
// of through-associations (zero own columns, one nested scope) are
// flattened away, so the target's record sits directly under the
// association's key.
func DecodeRow(adapter *RowAdapter, columns []string, values []any) Record {
	if adapter == nil {
		return nil
	}
	adapter = flattened(adapter)

	record := make(Record, adapter.Width()+len(adapter.Scopes))
	for i := adapter.Start; i < adapter.End; i++ {
		record[columns[i]] = values[i]
	}
	for _, s := range adapter.Scopes {
		child := flattened(s.Adapter)
		if rangeIsNull(child, values) {
			record[s.Key] = nil
			continue
		}
		record[s.Key] = DecodeRow(child, columns, values)
	}
	return record
}

// flattened skips levels that hold no columns of their own and exactly one
// nested scope.
func flattened(a *RowAdapter) *RowAdapter {
	for a.Width() == 0 && len(a.Scopes) == 1 {
		a = a.Scopes[0].Adapter
	}
	return a
}

// rangeIsNull reports whether every column owned by the adapter or any of
// its descendants is NULL.
func rangeIsNull(a *RowAdapter, values []any) bool {
	for i := a.Start; i < a.End; i++ {
		if values[i] != nil {
			return false
		}
	}
	for _, s := range a.Scopes {
		if !rangeIsNull(s.Adapter, values) {
			return false
		}
	}
	return true
}

// ScanRows drains rows, decoding each result row into a Record per the
// adapter. The caller retains ownership of rows and must still call Close.
func ScanRows(rows *sql.Rows, adapter *RowAdapter) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, DecodeRow(adapter, columns, values))
	}
	return out, rows.Err()
}
