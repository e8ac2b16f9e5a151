// Package lang implements Molang, a small expression language for scripting
// the behavior of game objects.
//
// A program is a sequence of expressions separated by ';'. Every value is a
// number, a string, an array, an object or a function. Booleans are the
// numbers 1 and 0, and identifiers are case-insensitive.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	Program    → (Expr ';')* Expr? EOF
//	Expr       → Assign | Ternary | Conditional | Binary
//	Assign     → Expr '=' Expr                 (right-associative)
//	Ternary    → Expr '?' Expr ':' Expr
//	Conditional→ Expr '?' Expr                 (0 when false)
//	Binary     → Expr op Expr                  (?? || && == != < <= > >= + - * / ->)
//	Unary      → ('-' | '!') Postfix | 'return' Expr?
//	Postfix    → Single ('[' Expr ']' | '(' Args? ')')*
//	Single     → Number | String | Name | '(' Expr ')' | Block
//	           | 'break' | 'continue' | 'loop' | 'for_each'
//	Name       → Word ('.' Word)*
//	Block      → '{' (Expr? ';')* Expr? '}'
//
// Strings are single-quoted and have no escapes. The words true and false
// are 1 and 0.
//
// # Evaluation
//
// A program runs against a Scope. The names temp and t refer to a fresh
// scope for each evaluation. A block evaluates to a function that runs its
// body when called, so loop(n, { ... }) and for_each(t.x, array, { ... })
// take their bodies as values. Within a block, break and continue control
// the innermost loop and return leaves the block. The left side of '->'
// selects the entity that the right side is evaluated against.
//
//	v.x = 0; v.y = 1;
//	loop(10, { t.x = v.x + v.y; v.x = v.y; v.y = t.x; });
//	return v.y;
//
// Evaluation never fails: missing names read as 0, division by zero is 0,
// and calls to non-functions are 0.
//
// # Compilation
//
// Compile specializes a program to a typed Signature. Parameters become
// slots, constant bindings are inlined, invariant subtrees are folded, and
// the result is a closure tree that runs without a scope. CompileFunc wraps
// the result as an ordinary Go func:
//
//	lerp, err := lang.CompileFunc[func(a, b float64) float64](
//		ctx, "a + (b - a) * 0.5", []string{"a", "b"})
//
// # Hosts
//
// An Engine bundles the standard namespaces math, query and variable.
// Host functions are plain Go funcs, wrapped by NewHostFunction, or are
// declared in a YAML Manifest whose bodies may be written as expr-lang
// expressions.
package lang
