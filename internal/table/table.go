// Package table is a schema-agnostic in-memory table with parquet, tab
// separated and xlsx codecs. Cell values are nil, int64, float64 or string.
package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

var ErrColumnMismatch = errors.New("column sets differ")

// Kind is a column type. Kinds are ordered by width: a column holding more
// than one kind is stored as the widest of them.
type Kind int

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
)

func (self Kind) String() string {
	switch self {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "Kind(" + strconv.Itoa(int(self)) + ")"
}

// Widen returns the kind able to hold values of both kinds.
func (self Kind) Widen(other Kind) Kind { return max(self, other) }

// KindOf returns kind of a cell value, or zero for nil.
func KindOf(v any) Kind {
	switch v.(type) {
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	}
	return 0
}

// Coerce converts v into the representation of kind k. Nil stays nil.
func Coerce(v any, k Kind) any {
	switch k {
	case KindFloat:
		if n, ok := v.(int64); ok {
			return float64(n)
		}
	case KindString:
		switch v := v.(type) {
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return FormatFloat(v)
		}
	}
	return v
}

func FormatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ------------------------------------------------------------

type Column struct {
	Name string
	Kind Kind
}

type Table struct {
	Columns []Column
	Rows    [][]any
}

func New(columns ...Column) *Table {
	return &Table{Columns: columns}
}

func (self *Table) Len() int { return len(self.Rows) }

func (self *Table) Names() []string {
	names := make([]string, len(self.Columns))
	for i, col := range self.Columns {
		names[i] = col.Name
	}
	return names
}

// Index returns position of the named column or -1.
func (self *Table) Index(name string) int {
	return slices.IndexFunc(self.Columns, func(col Column) bool {
		return col.Name == name
	})
}

// AddRow appends one row. Values must follow column order.
func (self *Table) AddRow(values ...any) error {
	if len(values) != len(self.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns",
			len(values), len(self.Columns))
	}
	self.Rows = append(self.Rows, values)
	return nil
}

// Value returns the cell coerced to its column kind.
func (self *Table) Value(row, col int) any {
	return Coerce(self.Rows[row][col], self.Columns[col].Kind)
}

// SameColumns reports whether both tables have the same set of column
// names, in any order.
func (self *Table) SameColumns(other *Table) bool {
	if len(self.Columns) != len(other.Columns) {
		return false
	}
	for _, col := range other.Columns {
		if self.Index(col.Name) < 0 {
			return false
		}
	}
	return true
}

// Append adds rows of other, reordered into columns of self. Column kinds
// are widened when the tables disagree.
func (self *Table) Append(other *Table) error {
	if !self.SameColumns(other) {
		return fmt.Errorf("append %v to %v: %w", other.Names(), self.Names(),
			ErrColumnMismatch)
	}

	order := make([]int, len(self.Columns))
	for i := range self.Columns {
		j := other.Index(self.Columns[i].Name)
		order[i] = j
		self.Columns[i].Kind = self.Columns[i].Kind.Widen(other.Columns[j].Kind)
	}

	self.Rows = slices.Grow(self.Rows, len(other.Rows))
	for _, src := range other.Rows {
		row := make([]any, len(order))
		for i, j := range order {
			row[i] = src[j]
		}
		self.Rows = append(self.Rows, row)
	}
	return nil
}
