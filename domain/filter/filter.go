// Package filter turns user-chosen (column, operator, value) conditions and
// the AND/OR connectors between them into a typed predicate tree that is
// evaluated directly against table columns.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"edahub/domain/table"
)

// Operator is a comparison operator offered by the condition builder
type Operator string

const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpGt Operator = ">"
	OpLt Operator = "<"
	OpGe Operator = ">="
	OpLe Operator = "<="
)

// Operators lists the operators in the order the UI offers them
var Operators = []Operator{OpEq, OpNe, OpGt, OpLt, OpGe, OpLe}

// ParseOperator accepts the ASCII operators and their unicode forms
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "=", "==":
		return OpEq, nil
	case "!=", "≠":
		return OpNe, nil
	case ">":
		return OpGt, nil
	case "<":
		return OpLt, nil
	case ">=", "≥":
		return OpGe, nil
	case "<=", "≤":
		return OpLe, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Connector joins two adjacent conditions
type Connector string

const (
	And Connector = "AND"
	Or  Connector = "OR"
)

// ParseConnector is case-insensitive
func ParseConnector(s string) (Connector, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND":
		return And, nil
	case "OR":
		return Or, nil
	}
	return "", fmt.Errorf("unknown connector %q", s)
}

// Condition is one row of the condition builder. Equality uses Values as a
// set of accepted literals; every other operator uses the single Value.
type Condition struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Values   []string `json:"values,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// empty reports whether the condition carries no constraint
func (c Condition) empty() bool {
	if c.Operator == OpEq {
		return len(c.Values) == 0
	}
	return strings.TrimSpace(c.Value) == ""
}

// InvalidFilterError reports an expression that cannot be evaluated against a table
type InvalidFilterError struct {
	Expression string
	Err        error
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid condition %s: %v", e.Expression, e.Err)
}

func (e *InvalidFilterError) Unwrap() error {
	return e.Err
}

// Predicate selects rows of the table it was built against
type Predicate interface {
	Match(row int) bool
	String() string
}

type allNode struct{}

func (allNode) Match(int) bool { return true }
func (allNode) String() string { return "all rows" }

type binaryNode struct {
	op          Connector
	left, right Predicate
}

func (n binaryNode) Match(row int) bool {
	if n.op == And {
		return n.left.Match(row) && n.right.Match(row)
	}
	return n.left.Match(row) || n.right.Match(row)
}

func (n binaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, strings.ToLower(string(n.op)), n.right)
}

type conditionNode struct {
	t    *table.Table
	cond Condition
	set  map[string]bool
	num  float64
	text string
	// numeric is set when the literal parsed as a decimal number
	numeric bool
}

func (n conditionNode) Match(row int) bool {
	col := n.cond.Column
	if n.cond.Operator == OpEq {
		return !n.t.IsNA(row, col) && n.set[n.t.Text(row, col)]
	}
	if n.t.IsNA(row, col) {
		return n.cond.Operator == OpNe
	}
	var cmp int
	if n.numeric {
		v := n.t.Float(row, col)
		switch {
		case v < n.num:
			cmp = -1
		case v > n.num:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(n.t.Text(row, col), n.text)
	}
	switch n.cond.Operator {
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGe:
		return cmp >= 0
	case OpLe:
		return cmp <= 0
	}
	return false
}

func (n conditionNode) String() string {
	return describe(n.cond)
}

// describe renders a condition the way it appears in messages
func describe(c Condition) string {
	if c.Operator == OpEq {
		quoted := make([]string, len(c.Values))
		for i, v := range c.Values {
			quoted[i] = strconv.Quote(v)
		}
		return fmt.Sprintf("`%s` in [%s]", c.Column, strings.Join(quoted, ", "))
	}
	lit := strings.TrimSpace(c.Value)
	if _, err := parseDecimal(lit); err != nil {
		lit = strconv.Quote(lit)
	}
	return fmt.Sprintf("`%s` %s %s", c.Column, c.Operator, lit)
}

func parseDecimal(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite decimal", s)
	}
	return f, nil
}

// Build compiles conditions against t. connectors[i] joins conds[i] and
// conds[i+1] and belongs to conds[i+1]; dropping an empty condition drops
// the connector it owns. Combination is strictly left to right.
func Build(t *table.Table, conds []Condition, connectors []Connector) (Predicate, error) {
	if len(conds) > 0 && len(connectors) != len(conds)-1 {
		return nil, fmt.Errorf("expected %d connectors for %d conditions, got %d", len(conds)-1, len(conds), len(connectors))
	}

	var root Predicate
	for i, c := range conds {
		if c.empty() {
			continue
		}
		node, err := compile(t, c)
		if err != nil {
			return nil, err
		}
		if root == nil {
			root = node
			continue
		}
		op := connectors[i-1]
		if op != And && op != Or {
			return nil, &InvalidFilterError{Expression: describe(c), Err: fmt.Errorf("unknown connector %q", op)}
		}
		root = binaryNode{op: op, left: root, right: node}
	}

	if root == nil {
		return allNode{}, nil
	}
	return root, nil
}

func compile(t *table.Table, c Condition) (Predicate, error) {
	invalid := func(err error) error {
		return &InvalidFilterError{Expression: describe(c), Err: err}
	}

	kind, err := t.Kind(c.Column)
	if err != nil {
		return nil, invalid(err)
	}

	node := conditionNode{t: t, cond: c}
	switch c.Operator {
	case OpEq:
		node.set = make(map[string]bool, len(c.Values))
		for _, v := range c.Values {
			node.set[v] = true
		}
		return node, nil
	case OpNe, OpGt, OpLt, OpGe, OpLe:
	default:
		return nil, invalid(fmt.Errorf("unknown operator %q", c.Operator))
	}

	lit := strings.TrimSpace(c.Value)
	if f, err := parseDecimal(lit); err == nil {
		if kind != table.KindNumeric {
			return nil, invalid(fmt.Errorf("cannot compare %s column %q with number %s", kind, c.Column, lit))
		}
		node.num, node.numeric = f, true
		return node, nil
	}
	if kind == table.KindNumeric {
		return nil, invalid(fmt.Errorf("cannot compare numeric column %q with text %q", c.Column, lit))
	}
	node.text = lit
	return node, nil
}

// Apply returns the rows of t matched by p, as a new view
func Apply(t *table.Table, p Predicate) (*table.Table, error) {
	rows := make([]int, 0, t.Nrow())
	for i := 0; i < t.Nrow(); i++ {
		if p.Match(i) {
			rows = append(rows, i)
		}
	}
	return t.Subset(rows)
}

// Spec is the serializable state of the condition builder
type Spec struct {
	Conditions []Condition `json:"conditions,omitempty"`
	Connectors []Connector `json:"connectors,omitempty"`
}

// Build compiles the spec against t
func (s Spec) Build(t *table.Table) (Predicate, error) {
	return Build(t, s.Conditions, s.Connectors)
}

// Clone returns a deep copy of the spec
func (s Spec) Clone() Spec {
	out := Spec{Connectors: append([]Connector(nil), s.Connectors...)}
	if len(s.Conditions) > 0 {
		out.Conditions = make([]Condition, len(s.Conditions))
		for i, c := range s.Conditions {
			c.Values = append([]string(nil), c.Values...)
			out.Conditions[i] = c
		}
	}
	return out
}
