package sop

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Table maps operator names to operators. It is safe for concurrent use.
type Table struct {
	mu  sync.RWMutex
	ops map[string]*Operator
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{ops: make(map[string]*Operator)}
}

// Add registers op. Names must be unique and operators must have a
// constructor.
func (t *Table) Add(op *Operator) error {
	if op.Name == "" || op.Construct == nil {
		return fmt.Errorf("sop: operator %q is incomplete", op.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.ops[op.Name]; exists {
		return fmt.Errorf("sop: operator %q already registered", op.Name)
	}
	t.ops[op.Name] = op
	return nil
}

// Lookup returns the operator registered under name.
func (t *Table) Lookup(name string) (*Operator, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	op, ok := t.ops[name]
	return op, ok
}

// Names returns the registered operator names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	names := lo.Keys(t.ops)
	t.mu.RUnlock()
	slices.Sort(names)
	return names
}

// NewNode constructs a node of the named operator.
func (t *Table) NewNode(opName, nodeName string) (Node, error) {
	op, ok := t.Lookup(opName)
	if !ok {
		return nil, fmt.Errorf("sop: unknown operator %q", opName)
	}
	return op.Construct(nodeName, op), nil
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns the process-wide table holding the built-in
// operators.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable()
		for _, op := range []*Operator{PolyClipOperator(), FlattenOperator()} {
			if err := defaultTable.Add(op); err != nil {
				panic(err)
			}
		}
	})
	return defaultTable
}
