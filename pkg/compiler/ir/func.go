package ir

import (
	"fmt"
	"strings"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Func is a call to a registered scalar function. Arguments are child
// expression nodes, referenced by id and kept in call order.
type Func struct {
	baseExpression

	// Name is the registry name of the function, including the "pl."
	// namespace prefix.
	Name string
	// Symbol is the operator punctuation the front-end parsed, empty for
	// plain function calls. Kept for diagnostics only.
	Symbol string
	// Opcode is the registry opcode for built-in operators, -1 for plain
	// function calls.
	Opcode int64

	argIDs   []int64
	funcID   int64
	argTypes []typespb.DataType
}

var _ Expression = (*Func)(nil)

// Init sets up a call to the named registry function.
func (f *Func) Init(name string, args []Expression) error {
	if !strings.HasPrefix(name, "pl.") {
		name = "pl." + name
	}
	f.Name = name
	f.Opcode = opcodeNone
	f.funcID = -1
	for _, arg := range args {
		if err := f.AddArg(arg); err != nil {
			return err
		}
	}
	return nil
}

// InitOp sets up a call to a built-in operator resolved through OpMap.
func (f *Func) InitOp(op Op, args []Expression) error {
	if err := f.Init(op.EngineName, args); err != nil {
		return err
	}
	f.Symbol = op.Symbol
	f.Opcode = op.Opcode
	return nil
}

func (f *Func) DebugString() string {
	return fmt.Sprintf("Func(id=%d, %s)", f.id, f.Name)
}

// Args returns the argument expressions in call order.
func (f *Func) Args() []Expression {
	out := make([]Expression, len(f.argIDs))
	for i, id := range f.argIDs {
		expr, ok := f.graph.Get(id).(Expression)
		if !ok {
			panic(fmt.Sprintf("ir: arg %d of func %d is missing or not an expression", id, f.id))
		}
		out[i] = expr
	}
	return out
}

// AddArg appends arg to the call and records the ownership edge.
func (f *Func) AddArg(arg Expression) error {
	f.argIDs = append(f.argIDs, arg.ID())
	return f.graph.addEdgeByID(f.id, arg.ID())
}

// AddOrCloneArg appends arg, cloning it first if another node already
// owns it. Expression nodes have a single owner; sharing one across
// calls would make containing-operator resolution ambiguous.
func (f *Func) AddOrCloneArg(arg Expression) error {
	if len(f.graph.dag.Parents(arg.ID())) > 0 {
		copied, err := f.graph.CopyNode(arg)
		if err != nil {
			return err
		}
		arg = copied.(Expression)
	}
	return f.AddArg(arg)
}

// UpdateArg replaces the argument at idx, rewiring the ownership edges.
func (f *Func) UpdateArg(idx int, arg Expression) error {
	if idx < 0 || idx >= len(f.argIDs) {
		return NodeErrorf(f, "func %s has no argument %d", f.Name, idx)
	}
	old := f.argIDs[idx]
	f.argIDs[idx] = arg.ID()
	if err := f.graph.deleteEdgeByID(f.id, old); err != nil {
		return err
	}
	return f.graph.addEdgeByID(f.id, arg.ID())
}

// ReplaceArg swaps every occurrence of old for new. Errors if old is not
// an argument of this call.
func (f *Func) ReplaceArg(old, new Expression) error {
	found := false
	for i, id := range f.argIDs {
		if id == old.ID() {
			if err := f.UpdateArg(i, new); err != nil {
				return err
			}
			found = true
		}
	}
	if !found {
		return NodeErrorf(f, "expression %d is not an argument of func %s", old.ID(), f.Name)
	}
	return nil
}

// FuncID returns the registry id; -1 until type resolution binds it.
func (f *Func) FuncID() int64 { return f.funcID }

// SetFuncID records the registry id chosen by overload resolution.
func (f *Func) SetFuncID(id int64) { f.funcID = id }

// SetArgTypes records the resolved argument types, in call order.
func (f *Func) SetArgTypes(types []typespb.DataType) {
	f.argTypes = append([]typespb.DataType(nil), types...)
}

// ArgTypes returns the resolved argument types. Falls back to the args'
// own resolved types when overload resolution has not stamped them.
func (f *Func) ArgTypes() ([]typespb.DataType, error) {
	if f.argTypes != nil {
		return f.argTypes, nil
	}
	types := make([]typespb.DataType, 0, len(f.argIDs))
	for _, arg := range f.Args() {
		if !arg.TypeResolved() {
			return nil, NodeErrorf(f, "argument %d of func %s has no resolved type", arg.ID(), f.Name)
		}
		types = append(types, arg.DataType())
	}
	return types, nil
}

func (f *Func) ToProto() (*planpb.ScalarExpression, error) {
	args := make([]*planpb.ScalarExpression, 0, len(f.argIDs))
	for _, arg := range f.Args() {
		pb, err := arg.ToProto()
		if err != nil {
			return nil, err
		}
		args = append(args, pb)
	}
	types, err := f.ArgTypes()
	if err != nil {
		return nil, err
	}
	return &planpb.ScalarExpression{
		Func: &planpb.ScalarFunc{
			Name:          f.Name,
			ID:            f.funcID,
			Args:          args,
			ArgsDataTypes: types,
		},
	}, nil
}

func (f *Func) copyFrom(src Node, copied copyMap) error {
	other := src.(*Func)
	f.copyFromExpression(other)
	f.Name = other.Name
	f.Symbol = other.Symbol
	f.Opcode = other.Opcode
	f.funcID = other.funcID
	f.argTypes = append([]typespb.DataType(nil), other.argTypes...)
	for _, arg := range other.Args() {
		argCopy, err := f.graph.copyNode(arg, copied)
		if err != nil {
			return err
		}
		if err := f.AddArg(argCopy.(Expression)); err != nil {
			return err
		}
	}
	return nil
}
