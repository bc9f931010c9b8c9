package dbpool

import (
	"fmt"
	"strings"
)

// bind rewrites :name placeholders to positional $n arguments.
//
// params may be nil (statement passed through unchanged), a map[string]any
// for one parameter set, or a []map[string]any which expands the statement's
// VALUES tuple into a multi-row bulk insert.
//
// Placeholders inside single-quoted literals and `::type` casts are left
// alone, as is any :name with no matching key in the parameter map.
func bind(stmt string, params any) (string, []any, error) {
	switch p := params.(type) {
	case nil:
		return stmt, nil, nil
	case map[string]any:
		return bindNamed(stmt, p)
	case []map[string]any:
		return bindBulk(stmt, p)
	default:
		return "", nil, fmt.Errorf("dbpool: unsupported params type %T", params)
	}
}

func bindNamed(stmt string, params map[string]any) (string, []any, error) {
	var (
		out     strings.Builder
		args    []any
		indexes = make(map[string]int) // name → $n, repeated names share one arg
	)

	for i := 0; i < len(stmt); {
		c := stmt[i]

		// Skip quoted literals wholesale.
		if c == '\'' {
			end := closingQuote(stmt, i)
			out.WriteString(stmt[i:end])
			i = end
			continue
		}

		// "::" is a cast, not a placeholder.
		if c == ':' && i+1 < len(stmt) && stmt[i+1] == ':' {
			out.WriteString("::")
			i += 2
			continue
		}

		if c == ':' && i+1 < len(stmt) && isIdentByte(stmt[i+1]) {
			name, next := readIdent(stmt, i+1)
			if _, ok := params[name]; ok {
				idx, seen := indexes[name]
				if !seen {
					args = append(args, params[name])
					idx = len(args)
					indexes[name] = idx
				}
				fmt.Fprintf(&out, "$%d", idx)
				i = next
				continue
			}
		}

		out.WriteByte(c)
		i++
	}

	return out.String(), args, nil
}

// bindBulk rewrites an INSERT's single VALUES tuple into one tuple per row,
// binding each row's values positionally. All rows must be shaped for the
// same tuple; keys missing from a row bind SQL NULL.
func bindBulk(stmt string, rows []map[string]any) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("dbpool: bulk bind with zero rows")
	}

	open, closeIdx, err := valuesTuple(stmt)
	if err != nil {
		return "", nil, err
	}

	names := placeholderNames(stmt[open : closeIdx+1])
	if len(names) == 0 {
		return "", nil, fmt.Errorf("dbpool: bulk bind found no placeholders in VALUES tuple")
	}

	var (
		tuples = make([]string, 0, len(rows))
		args   = make([]any, 0, len(rows)*len(names))
		n      = 0
	)
	for _, row := range rows {
		refs := make([]string, len(names))
		for i, name := range names {
			n++
			refs[i] = fmt.Sprintf("$%d", n)
			args = append(args, row[name])
		}
		tuples = append(tuples, "("+strings.Join(refs, ", ")+")")
	}

	return stmt[:open] + strings.Join(tuples, ", ") + stmt[closeIdx+1:], args, nil
}

// valuesTuple locates the parenthesized tuple following the VALUES keyword.
func valuesTuple(stmt string) (open, closeIdx int, err error) {
	upper := strings.ToUpper(stmt)
	vi := strings.Index(upper, "VALUES")
	if vi < 0 {
		return 0, 0, fmt.Errorf("dbpool: bulk bind requires a VALUES clause")
	}

	open = strings.IndexByte(stmt[vi:], '(')
	if open < 0 {
		return 0, 0, fmt.Errorf("dbpool: bulk bind found no tuple after VALUES")
	}
	open += vi

	depth := 0
	for i := open; i < len(stmt); i++ {
		switch stmt[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return open, i, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("dbpool: unbalanced parentheses in VALUES tuple")
}

// placeholderNames lists :name placeholders in order of appearance.
func placeholderNames(s string) []string {
	var names []string
	for i := 0; i < len(s); {
		if s[i] == '\'' {
			i = closingQuote(s, i)
			continue
		}
		if s[i] == ':' && i+1 < len(s) && s[i+1] == ':' {
			i += 2
			continue
		}
		if s[i] == ':' && i+1 < len(s) && isIdentByte(s[i+1]) {
			name, next := readIdent(s, i+1)
			names = append(names, name)
			i = next
			continue
		}
		i++
	}
	return names
}

// closingQuote returns the index one past the literal opened at i.
func closingQuote(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == '\'' {
			// Doubled quote is an escaped quote inside the literal.
			if j+1 < len(s) && s[j+1] == '\'' {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

func readIdent(s string, i int) (name string, next int) {
	j := i
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	return s[i:j], j
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
