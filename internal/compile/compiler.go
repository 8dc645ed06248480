// Package compile implements a single-pass Pratt parser that compiles
// source text directly to bytecode, with no separate AST stage.
package compile

import (
	"fmt"
	"strconv"

	"github.com/ember-lang/ember/internal/lexer"
	"github.com/ember-lang/ember/internal/token"
	"github.com/ember-lang/ember/internal/vm"
)

// Error is a compile-time diagnostic, tied to a source line. When
// several diagnostics are reported together, Line is 0 and Message holds
// each one's own "[line N] ..." text on a separate line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

// funcType distinguishes the implicit top-level script function from
// the functions, methods and initializers the compiler nests inside it.
type funcType int

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

type local struct {
	name       string
	depth      int // -1 while its initializer is still compiling
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// funcState tracks one function body's compile-time scope: its locals,
// the upvalues it captures from enclosing functions, and the function
// object bytecode is emitted into. Nesting mirrors lexical nesting.
type funcState struct {
	enclosing  *funcState
	fn         *vm.ObjFunction
	kind       funcType
	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Compiler drives the Pratt parser: it holds the current/previous
// token pair, scans on demand from the lexer, and threads a chain of
// funcState/classState records mirroring lexical nesting of functions
// and classes.
type Compiler struct {
	vm        *vm.VM
	lx        *lexer.Lexer
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errors    []error

	fs    *funcState
	class *classState
}

// Compile compiles source into the top-level script function, sharing
// vm's string interner so literals compiled here and built-ins
// installed into vm's globals collapse to the same ObjString instances.
func Compile(machine *vm.VM, source, name string) (*vm.ObjFunction, error) {
	c := &Compiler{vm: machine, lx: lexer.New(source)}
	c.beginFunction(typeScript, name)
	c.advance()

	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "expected end of expression")
	fn := c.endFunction()

	if c.hadError {
		return nil, joinErrors(c.errors)
	}
	return fn, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "\n"
		}
		msg += e.Error()
	}
	return &Error{Message: msg}
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lx.NextToken()
		if c.current.Type != token.Illegal {
			break
		}
		c.errorAtCurrent(c.current.Literal)
	}
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errors = append(c.errors, &Error{Line: tok.Pos.Line, Message: msg})
}

// synchronize recovers from a parse error by skipping to the next
// token that plausibly begins a new statement, so one mistake doesn't
// cascade into a wall of follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Return:
			return
		}
		c.advance()
	}
}

// --- function scope ----------------------------------------------------

func (c *Compiler) beginFunction(kind funcType, name string) {
	fn := c.vm.NewFunction()
	if kind != typeScript {
		fn.Name = c.vm.InternString(name)
	}
	fs := &funcState{enclosing: c.fs, fn: fn, kind: kind}
	// Slot 0 is reserved for the receiver in methods/initializers and
	// is otherwise unused, mirroring the calling convention that keeps
	// the callee itself in its own call window.
	selfName := ""
	if kind == typeMethod || kind == typeInitializer {
		selfName = "this"
	}
	fs.locals = append(fs.locals, local{name: selfName, depth: 0})
	c.fs = fs
}

func (c *Compiler) endFunction() *vm.ObjFunction {
	c.emitReturn()
	fn := c.fs.fn
	fn.UpvalueCount = len(c.fs.upvalues)
	c.fs = c.fs.enclosing
	return fn
}

func (c *Compiler) currentChunk() *vm.Chunk { return c.fs.fn.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Pos.Line)
}

func (c *Compiler) emitOp(op vm.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op vm.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitOpShort writes an opcode followed by a two-byte big-endian count,
// used for the object-new forms (OP_ARRAY, OP_TABLE) so literals aren't
// capped at 255 elements.
func (c *Compiler) emitOpShort(op vm.OpCode, n int) {
	c.emitOp(op)
	c.emitByte(byte(n >> 8))
	c.emitByte(byte(n))
}

func (c *Compiler) emitReturn() {
	if c.fs.kind == typeInitializer {
		c.emitOpByte(vm.OpGetLocal, 0)
	} else {
		c.emitOp(vm.OpNil)
	}
	c.emitOp(vm.OpReturn)
}

func (c *Compiler) makeConstant(v vm.Value) byte {
	idx, ok := c.currentChunk().AddConstant(v)
	if !ok {
		c.error("too many constants in one chunk")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v vm.Value) {
	c.emitOpByte(vm.OpConstant, c.makeConstant(v))
}

// emitJump writes an opcode followed by a two-byte placeholder offset,
// returning the offset of the first placeholder byte to patch later.
func (c *Compiler) emitJump(op vm.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("too much code to jump over")
	}
	c.currentChunk().Code[offset] = byte(jump >> 8)
	c.currentChunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(vm.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("loop body too large")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

// --- scopes and locals --------------------------------------------------

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	for len(c.fs.locals) > 0 && c.fs.locals[len(c.fs.locals)-1].depth > c.fs.scopeDepth {
		last := c.fs.locals[len(c.fs.locals)-1]
		if last.isCaptured {
			c.emitOp(vm.OpCloseUpvalue)
		} else {
			c.emitOp(vm.OpPop)
		}
		c.fs.locals = c.fs.locals[:len(c.fs.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) {
	if c.fs.scopeDepth == 0 {
		return
	}
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("a variable with this name already exists in this scope")
		}
	}
	if len(c.fs.locals) >= 256 {
		c.error("too many local variables in one function")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

func resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveLocalChecked is resolveLocal plus the "own initializer" guard:
// a local whose depth is still -1 is mid-declaration, so referencing it
// by name can only mean the initializer expression tried to read the
// variable it's initializing.
func (c *Compiler) resolveLocalChecked(name string) int {
	idx := resolveLocal(c.fs, name)
	if idx != -1 && c.fs.locals[idx].depth == -1 {
		c.error("can't read local variable in its own initializer")
	}
	return idx
}

// resolveUpvalue walks enclosing funcStates looking for name as a
// local there, adding a capture-directive chain of upvalues through
// every intervening function so nested closures can reach it.
func resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return addUpvalue(fs, byte(local), true)
	}
	if up := resolveUpvalue(fs.enclosing, name); up != -1 {
		return addUpvalue(fs, byte(up), false)
	}
	return -1
}

func addUpvalue(fs *funcState, index byte, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// --- declarations --------------------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	c.consume(token.Ident, "expected variable name")
	name := c.previous.Literal
	c.declareVariable(name)

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(vm.OpNil)
	}
	c.consume(token.Semicolon, "expected ';' after variable declaration")
	c.defineVariable(name)
}

func (c *Compiler) declareVariable(name string) {
	if c.fs.scopeDepth > 0 {
		c.declareLocal(name)
	}
}

func (c *Compiler) defineVariable(name string) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(vm.OpDefineGlobal, c.makeConstant(c.vm.StringValue(name)))
}

func (c *Compiler) funDeclaration() {
	c.consume(token.Ident, "expected function name")
	name := c.previous.Literal
	c.declareVariable(name)
	c.markInitialized()
	c.function(typeFunction, name)
	c.defineVariable(name)
}

// function compiles a parameter list and body into a nested funcState,
// then emits OP_CLOSURE in the enclosing function to build the closure
// at the point the definition executes.
func (c *Compiler) function(kind funcType, name string) {
	c.beginFunction(kind, name)
	c.beginScope()

	c.consume(token.LParen, "expected '(' after function name")
	if !c.check(token.RParen) {
		for {
			c.fs.fn.Arity++
			if c.fs.fn.Arity > 255 {
				c.error("can't have more than 255 parameters")
			}
			c.consume(token.Ident, "expected parameter name")
			c.declareLocal(c.previous.Literal)
			c.markInitialized()
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RParen, "expected ')' after parameters")
	c.consume(token.LBrace, "expected '{' before function body")
	c.block()

	upvalues := c.fs.upvalues
	fn := c.endFunction()

	idx := c.makeConstant(vm.FunctionValue(fn))
	c.emitOpByte(vm.OpClosure, idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Ident, "expected class name")
	name := c.previous.Literal
	c.declareVariable(name)
	nameConst := c.makeConstant(c.vm.StringValue(name))
	c.emitOpByte(vm.OpClass, nameConst)
	c.defineVariable(name)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.Less) {
		c.consume(token.Ident, "expected superclass name")
		c.namedVariable(c.previous.Literal, false)
		if c.previous.Literal == name {
			c.error("a class can't inherit from itself")
		}
		c.beginScope()
		c.declareLocal("super")
		c.markInitialized()
		c.namedVariable(name, false)
		c.emitOp(vm.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(name, false)
	c.consume(token.LBrace, "expected '{' before class body")
	for !c.check(token.RBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBrace, "expected '}' after class body")
	c.emitOp(vm.OpPop) // class value pushed by namedVariable above

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Ident, "expected method name")
	name := c.previous.Literal
	kind := typeMethod
	if name == "init" {
		kind = typeInitializer
	}
	c.function(kind, name)
	c.emitOpByte(vm.OpMethod, c.makeConstant(c.vm.StringValue(name)))
}

// --- statements ------------------------------------------------------------

func (c *Compiler) statement() {
	switch {
	case c.match(token.LBrace):
		c.beginScope()
		c.block()
		c.endScope()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.Return):
		c.returnStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBrace, "expected '}' after block")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "expected ';' after expression")
	c.emitOp(vm.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LParen, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RParen, "expected ')' after condition")

	thenJump := c.emitJump(vm.OpJumpIfFalse)
	c.emitOp(vm.OpPop)
	c.statement()

	elseJump := c.emitJump(vm.OpJump)
	c.patchJump(thenJump)
	c.emitOp(vm.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LParen, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RParen, "expected ')' after condition")

	exitJump := c.emitJump(vm.OpJumpIfFalse)
	c.emitOp(vm.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(vm.OpPop)
}

// forStatement desugars to a while loop: an initializer clause, a
// condition gating an exit jump, and an increment spliced in right
// before the loop jumps back to re-check the condition.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LParen, "expected '(' after 'for'")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "expected ';' after loop condition")
		exitJump = c.emitJump(vm.OpJumpIfFalse)
		c.emitOp(vm.OpPop)
	}

	if !c.check(token.RParen) {
		bodyJump := c.emitJump(vm.OpJump)
		incrStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(vm.OpPop)
		c.consume(token.RParen, "expected ')' after for clauses")
		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RParen, "expected ')' after for clauses")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(vm.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fs.kind == typeScript {
		c.error("can't return from top-level code")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.fs.kind == typeInitializer {
		c.error("can't return a value from an initializer")
	}
	c.expression()
	c.consume(token.Semicolon, "expected ';' after return value")
	c.emitOp(vm.OpReturn)
}

// --- expressions -----------------------------------------------------------

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precTernary               // ?:
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . () []
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LParen:       {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.Dot:          {infix: (*Compiler).dot, precedence: precCall},
		token.LBracket:     {prefix: (*Compiler).arrayLiteral, infix: (*Compiler).subscript, precedence: precCall},
		token.LBrace:       {prefix: (*Compiler).tableLiteral},
		token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.Plus:         {infix: (*Compiler).binary, precedence: precTerm},
		token.Slash:        {infix: (*Compiler).binary, precedence: precFactor},
		token.Star:         {infix: (*Compiler).binary, precedence: precFactor},
		token.Bang:         {prefix: (*Compiler).unary},
		token.BangEqual:    {infix: (*Compiler).binary, precedence: precEquality},
		token.Equal:        {},
		token.EqualEqual:   {infix: (*Compiler).binary, precedence: precEquality},
		token.Greater:      {infix: (*Compiler).binary, precedence: precComparison},
		token.GreaterEqual: {infix: (*Compiler).binary, precedence: precComparison},
		token.Less:         {infix: (*Compiler).binary, precedence: precComparison},
		token.LessEqual:    {infix: (*Compiler).binary, precedence: precComparison},
		token.Ident:        {prefix: (*Compiler).variable},
		token.String:       {prefix: (*Compiler).stringLiteral},
		token.Number:       {prefix: (*Compiler).numberLiteral},
		token.And:          {infix: (*Compiler).and, precedence: precAnd},
		token.Or:           {infix: (*Compiler).or, precedence: precOr},
		token.False:        {prefix: (*Compiler).literal},
		token.Nil:          {prefix: (*Compiler).literal},
		token.True:         {prefix: (*Compiler).literal},
		token.This:         {prefix: (*Compiler).this},
		token.Super:        {prefix: (*Compiler).super},
		token.Question:     {infix: (*Compiler).ternary, precedence: precTernary},
	}
}

func (c *Compiler) getRule(t token.Type) parseRule { return rules[t] }

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := c.getRule(c.previous.Type)
	if rule.prefix == nil {
		c.error("expected expression")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for {
		next := c.getRule(c.current.Type)
		if prec > next.precedence {
			break
		}
		c.advance()
		next.infix(c, canAssign)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RParen, "expected ')' after expression")
}

func (c *Compiler) numberLiteral(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Literal, 64)
	if err != nil {
		c.error("invalid number literal")
		return
	}
	c.emitConstant(vm.Number(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	c.emitConstant(c.vm.StringValue(c.previous.Literal))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(vm.OpFalse)
	case token.True:
		c.emitOp(vm.OpTrue)
	case token.Nil:
		c.emitOp(vm.OpNil)
	}
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.Minus:
		c.emitOp(vm.OpNegate)
	case token.Bang:
		c.emitOp(vm.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := c.getRule(opType)
	c.parsePrecedence(rule.precedence + 1)
	switch opType {
	case token.Plus:
		c.emitOp(vm.OpAdd)
	case token.Minus:
		c.emitOp(vm.OpSubtract)
	case token.Star:
		c.emitOp(vm.OpMultiply)
	case token.Slash:
		c.emitOp(vm.OpDivide)
	case token.EqualEqual:
		c.emitOp(vm.OpEqual)
	case token.BangEqual:
		c.emitOp(vm.OpNotEqual)
	case token.Greater:
		c.emitOp(vm.OpGreater)
	case token.GreaterEqual:
		c.emitOp(vm.OpGreaterEqual)
	case token.Less:
		c.emitOp(vm.OpLess)
	case token.LessEqual:
		c.emitOp(vm.OpLessEqual)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(vm.OpJumpIfFalse)
	c.emitOp(vm.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(vm.OpJumpIfFalse)
	endJump := c.emitJump(vm.OpJump)
	c.patchJump(elseJump)
	c.emitOp(vm.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) ternary(canAssign bool) {
	thenJump := c.emitJump(vm.OpJumpIfFalse)
	c.emitOp(vm.OpPop)
	c.parsePrecedence(precAssignment)
	c.consume(token.Colon, "expected ':' in ternary expression")
	elseJump := c.emitJump(vm.OpJump)
	c.patchJump(thenJump)
	c.emitOp(vm.OpPop)
	c.parsePrecedence(precTernary)
	c.patchJump(elseJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList(token.RParen)
	c.emitOpByte(vm.OpCall, byte(argCount))
}

func (c *Compiler) argumentList(closing token.Type) int {
	count := 0
	if !c.check(closing) {
		for {
			c.expression()
			if count == 255 {
				c.error("can't have more than 255 arguments")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(closing, "expected closing delimiter after arguments")
	return count
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Ident, "expected property name after '.'")
	name := c.previous.Literal
	nameConst := c.makeConstant(c.vm.StringValue(name))

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitOpByte(vm.OpSetProperty, nameConst)
	case c.match(token.LParen):
		argCount := c.argumentList(token.RParen)
		c.emitOpByte(vm.OpInvoke, nameConst)
		c.emitByte(byte(argCount))
	default:
		c.emitOpByte(vm.OpGetProperty, nameConst)
	}
}

func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.consume(token.RBracket, "expected ']' after index")
	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOp(vm.OpSetIndex)
	} else {
		c.emitOp(vm.OpGetIndex)
	}
}

func (c *Compiler) arrayLiteral(canAssign bool) {
	count := 0
	if !c.check(token.RBracket) {
		for {
			c.expression()
			if count == 0xffff {
				c.error("too many elements in array literal")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RBracket, "expected ']' after array literal")
	c.emitOpShort(vm.OpArray, count)
}

func (c *Compiler) tableLiteral(canAssign bool) {
	count := 0
	if !c.check(token.RBrace) {
		for {
			if c.match(token.LBracket) {
				c.expression()
				c.consume(token.RBracket, "expected ']' after computed key")
			} else if c.match(token.String) {
				c.emitConstant(c.vm.StringValue(c.previous.Literal))
			} else {
				c.consume(token.Ident, "expected table key")
				c.emitConstant(c.vm.StringValue(c.previous.Literal))
			}
			c.consume(token.Equal, "expected '=' after table key")
			c.expression()
			if count == 0xffff {
				c.error("too many entries in table literal")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RBrace, "expected '}' after table literal")
	c.emitOpShort(vm.OpTable, count)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Literal, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	if local := c.resolveLocalChecked(name); local != -1 {
		if canAssign && c.match(token.Equal) {
			c.expression()
			c.emitOpByte(vm.OpSetLocal, byte(local))
		} else {
			c.emitOpByte(vm.OpGetLocal, byte(local))
		}
		return
	}
	if up := resolveUpvalue(c.fs, name); up != -1 {
		if canAssign && c.match(token.Equal) {
			c.expression()
			c.emitOpByte(vm.OpSetUpvalue, byte(up))
		} else {
			c.emitOpByte(vm.OpGetUpvalue, byte(up))
		}
		return
	}
	nameConst := c.makeConstant(c.vm.StringValue(name))
	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOpByte(vm.OpSetGlobal, nameConst)
	} else {
		c.emitOpByte(vm.OpGetGlobal, nameConst)
	}
}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.error("can't use 'this' outside of a class")
		return
	}
	c.namedVariable("this", false)
}

func (c *Compiler) super(canAssign bool) {
	if c.class == nil {
		c.error("can't use 'super' outside of a class")
	} else if !c.class.hasSuperclass {
		c.error("can't use 'super' in a class with no superclass")
	}
	c.consume(token.Dot, "expected '.' after 'super'")
	c.consume(token.Ident, "expected superclass method name")
	name := c.previous.Literal
	nameConst := c.makeConstant(c.vm.StringValue(name))

	c.namedVariable("this", false)
	if c.match(token.LParen) {
		argCount := c.argumentList(token.RParen)
		c.namedVariable("super", false)
		c.emitOpByte(vm.OpSuperInvoke, nameConst)
		c.emitByte(byte(argCount))
	} else {
		c.namedVariable("super", false)
		c.emitOpByte(vm.OpGetSuper, nameConst)
	}
}
