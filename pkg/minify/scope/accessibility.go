package scope

import (
	"fmt"
	"path"
	"strings"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// Accessibility controls whether a name may be obfuscated.
type Accessibility int

const (
	// Unspecified resolves to the owning scope's default during Prepare.
	Unspecified Accessibility = iota
	// Public names are externally observable and keep their text.
	Public
	// Private names may be renamed.
	Private
)

func (a Accessibility) String() string {
	switch a {
	case Public:
		return "public"
	case Private:
		return "private"
	}
	return "unspecified"
}

// AccessRule marks symbols or members matching Pattern public or private.
// Target is empty for plain symbol rules; for member rules it is "*",
// "this" or an identifier pattern naming the object.
type AccessRule struct {
	Access  Accessibility
	Target  string
	Pattern string
	At      ast.Bookmark
}

// ParseAccessRule parses a rule spec of the form "name" or "target.member".
// Both parts may use * wildcards.
func ParseAccessRule(spec string, access Accessibility) (AccessRule, error) {
	spec = strings.TrimSpace(spec)
	rule := AccessRule{Access: access}
	if i := strings.IndexByte(spec, '.'); i >= 0 {
		rule.Target = spec[:i]
		rule.Pattern = spec[i+1:]
		if rule.Target == "" {
			return rule, fmt.Errorf("invalid accessibility spec %q: empty target", spec)
		}
		if !validPattern(rule.Target) {
			return rule, fmt.Errorf("invalid accessibility spec %q: bad target", spec)
		}
	} else {
		rule.Pattern = spec
	}
	if rule.Pattern == "" || !validPattern(rule.Pattern) {
		return rule, fmt.Errorf("invalid accessibility spec %q", spec)
	}
	return rule, nil
}

// String renders the rule back to its directive form.
func (r AccessRule) String() string {
	if r.Target == "" {
		return r.Access.String() + ":" + r.Pattern
	}
	return r.Access.String() + ":" + r.Target + "." + r.Pattern
}

// IsMemberRule reports whether the rule applies to object members.
func (r AccessRule) IsMemberRule() bool { return r.Target != "" }

// MatchesSymbol reports whether a plain symbol rule covers name.
func (r AccessRule) MatchesSymbol(name string) bool {
	return r.Target == "" && wildcardMatch(r.Pattern, name)
}

// MatchesMember reports whether a member rule covers target.member. An
// empty target stands for an object expression that is not a bare
// identifier; only "*" rules match it.
func (r AccessRule) MatchesMember(target, member string) bool {
	if r.Target == "" || !wildcardMatch(r.Pattern, member) {
		return false
	}
	if r.Target == "*" {
		return true
	}
	return target != "" && wildcardMatch(r.Target, target)
}

func validPattern(p string) bool {
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '*' || c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c >= 0x80:
		default:
			return false
		}
	}
	return true
}

func wildcardMatch(pattern, name string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == name
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
