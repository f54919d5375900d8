package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Builder collects WHERE conditions written with ? placeholders and numbers
// them as $1..$n in the order they are added.
type Builder struct {
	conds []string
	args  []any
}

func (b *Builder) Where(cond string, args ...any) {
	var sb strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' && i < len(args) {
			b.args = append(b.args, args[i])
			fmt.Fprintf(&sb, "$%d", len(b.args))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	b.conds = append(b.conds, sb.String())
}

// EqIf adds column = v when v is non-nil.
func EqIf[T any](b *Builder, column string, v *T) {
	if v != nil {
		b.Where(column+" = ?", *v)
	}
}

func (b *Builder) WhereSQL() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func (b *Builder) Args() []any { return b.args }

// LimitOffset appends LIMIT/OFFSET placeholders and returns the clause with
// the full argument list.
func (b *Builder) LimitOffset(p Page) (string, []any) {
	args := append(append([]any{}, b.args...), p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

type Sort struct {
	Column string
	Desc   bool
}

func (s Sort) dir() string {
	if s.Desc {
		return "DESC"
	}
	return "ASC"
}

func (s Sort) SQL() string {
	return " ORDER BY " + s.Column + " " + s.dir()
}

// Then appends a tiebreak column in the same direction so pages are stable.
func (s Sort) Then(column string) string {
	return s.SQL() + ", " + column + " " + s.dir()
}

// ParseSort maps sortBy through allow (API name -> column); unknown names fall
// back to fallback. sortOrder accepts ASC/DESC in any case, default DESC.
func ParseSort(v url.Values, allow map[string]string, fallback string) Sort {
	col, ok := allow[v.Get("sortBy")]
	if !ok {
		col = allow[fallback]
	}
	return Sort{Column: col, Desc: !strings.EqualFold(v.Get("sortOrder"), "ASC")}
}
