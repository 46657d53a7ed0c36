package config

import "time"

// Version is the current version of minime
const Version = "v1.0.0"

// Author is the author of the tool
const Author = "@lcalzada-xor"

// Default Values
const (
	DefaultMaxLineLength = 120
	DefaultConcurrency   = 8
	DefaultTimeout       = 10 * time.Second
	DefaultUserAgent     = "minime/" + Version
	DefaultOutputSuffix  = ".min.js"
	OptionsFileSuffix    = ".minime-options"
	IgnoreFileName       = ".minimeignore"
)

// CreditComment is prepended to the output unless disabled.
const CreditComment = "// Minified by minime " + Version + "\n"

// ReservedWords are claimed with both allocators before the first render so
// no generated identifier collides with a keyword or a well known global.
var ReservedWords = []string{
	// keywords and future reserved words
	"break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "implements", "import", "in", "instanceof", "interface", "let",
	"new", "null", "package", "private", "protected", "public", "return", "static",
	"super", "switch", "this", "throw", "true", "try", "typeof", "var", "void",
	"while", "with", "yield", "await", "async", "of", "get", "set",
	// legacy reserved words still rejected by old engines
	"abstract", "boolean", "byte", "char", "double", "final", "float", "goto", "int",
	"long", "native", "short", "synchronized", "throws", "transient", "volatile",
	// short globals a generated name must never shadow
	"NaN", "top", "ref", "sun", "undefined", "arguments", "eval", "Infinity",
}
