package ir

import "fmt"

// Kind differentiates variable symbols from function symbols.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
)

// DataType is the type of a symbol or expression result.
type DataType int

const (
	TypeInt DataType = iota
	TypeVoid
	TypeUnknown
)

// DTyp gives print friendly names for DataType, mirroring vslc's dTyp table.
var DTyp = [...]string{
	TypeInt:     "int",
	TypeVoid:    "void",
	TypeUnknown: "unknown",
}

func (d DataType) String() string {
	if int(d) < 0 || int(d) >= len(DTyp) {
		return "invalid"
	}
	return DTyp[d]
}

// GlobalScope is the reserved scope name for file-level declarations.
const GlobalScope = "global"

// Symbol is a single symbol table entry: either a variable (scalar or
// array) or a function.
type Symbol struct {
	Name            string
	Kind            Kind
	Type            DataType
	IsArray         bool
	ArraySize       int
	IsInitialized   bool
	ReturnType      DataType // function kind only.
	ParamCount      int      // function kind only.
	ParamTypes      []DataType
	ParamNames      []string
	Scope           string // "global" or the owning function's name.
	DeclarationLine int
}

type symKey struct {
	name  string
	scope string
}

// SymTab is a two-level (global + per-function) mapping from (name, scope)
// to Symbol, following vslc's ir.Global/ir.GetEntry shape but collapsed to
// a single flat map since minic has no nested block scoping: loop and
// branch bodies never introduce a new scope of their own.
type SymTab struct {
	entries map[symKey]*Symbol
}

// NewSymTab returns an empty symbol table.
func NewSymTab() *SymTab {
	return &SymTab{entries: make(map[symKey]*Symbol)}
}

// AddVariable inserts a scalar variable symbol. Returns false if (name,
// scope) is already taken.
func (t *SymTab) AddVariable(name string, typ DataType, line int, scope string) bool {
	if scope == "" {
		scope = GlobalScope
	}
	k := symKey{name, scope}
	if _, exists := t.entries[k]; exists {
		return false
	}
	t.entries[k] = &Symbol{
		Name:            name,
		Kind:            KindVariable,
		Type:            typ,
		Scope:           scope,
		DeclarationLine: line,
	}
	return true
}

// AddArray inserts an array variable symbol. Arrays are always created
// already initialized: indexing into an array before any element has been
// assigned is not a use-before-initialization error.
func (t *SymTab) AddArray(name string, typ DataType, size, line int, scope string) bool {
	if scope == "" {
		scope = GlobalScope
	}
	k := symKey{name, scope}
	if _, exists := t.entries[k]; exists {
		return false
	}
	t.entries[k] = &Symbol{
		Name:            name,
		Kind:            KindVariable,
		Type:            typ,
		IsArray:         true,
		ArraySize:       size,
		IsInitialized:   true,
		Scope:           scope,
		DeclarationLine: line,
	}
	return true
}

// AddFunction inserts a function symbol at global scope.
func (t *SymTab) AddFunction(name string, returnType DataType, paramTypes []DataType, paramNames []string, line int) bool {
	k := symKey{name, GlobalScope}
	if _, exists := t.entries[k]; exists {
		return false
	}
	t.entries[k] = &Symbol{
		Name:            name,
		Kind:            KindFunction,
		Type:            returnType,
		ReturnType:      returnType,
		ParamCount:      len(paramTypes),
		ParamTypes:      paramTypes,
		ParamNames:      paramNames,
		Scope:           GlobalScope,
		DeclarationLine: line,
	}
	return true
}

// AddParameter inserts a function parameter at scope = functionScope. A
// parameter is already initialized by the time the call binds it, so
// reading it in the function body is never a use-before-initialization
// error.
func (t *SymTab) AddParameter(name string, typ DataType, line int, functionScope string) bool {
	k := symKey{name, functionScope}
	if _, exists := t.entries[k]; exists {
		return false
	}
	t.entries[k] = &Symbol{
		Name:            name,
		Kind:            KindVariable,
		Type:            typ,
		IsInitialized:   true,
		Scope:           functionScope,
		DeclarationLine: line,
	}
	return true
}

// Lookup performs a global-only lookup.
func (t *SymTab) Lookup(name string) (*Symbol, bool) {
	s, ok := t.entries[symKey{name, GlobalScope}]
	return s, ok
}

// LookupInScope first searches currentScope, then falls back to global.
func (t *SymTab) LookupInScope(name, currentScope string) (*Symbol, bool) {
	if currentScope != "" && currentScope != GlobalScope {
		if s, ok := t.entries[symKey{name, currentScope}]; ok {
			return s, true
		}
	}
	s, ok := t.entries[symKey{name, GlobalScope}]
	return s, ok
}

// MarkInitialized sets the is_initialized flag of name at scope (falling
// back to global), if it exists. It is a monotonic predicate: once true it
// is never reset.
func (t *SymTab) MarkInitialized(name, scope string) {
	if s, ok := t.entries[symKey{name, scope}]; ok {
		s.IsInitialized = true
		return
	}
	if s, ok := t.entries[symKey{name, GlobalScope}]; ok {
		s.IsInitialized = true
	}
}

// Iterate returns every symbol in the table, order unspecified.
func (t *SymTab) Iterate() []*Symbol {
	out := make([]*Symbol, 0, len(t.entries))
	for _, s := range t.entries {
		out = append(out, s)
	}
	return out
}

// String renders a symbol for debug/verbose output.
func (s *Symbol) String() string {
	if s.Kind == KindFunction {
		return fmt.Sprintf("function %s(%d params) -> %s [scope=%s]", s.Name, s.ParamCount, s.ReturnType, s.Scope)
	}
	if s.IsArray {
		return fmt.Sprintf("array %s[%d] %s [scope=%s init=%t]", s.Name, s.ArraySize, s.Type, s.Scope, s.IsInitialized)
	}
	return fmt.Sprintf("var %s %s [scope=%s init=%t]", s.Name, s.Type, s.Scope, s.IsInitialized)
}
