package security

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// RedactPlaceholder replaces every secret the Redactor finds.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches attribute and config keys that hold secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|pass|key|credential)`)

// Redactor hides bot tokens and other secrets in log output and printed
// configuration. Secrets are recognised by format (DefaultPatterns) and by
// value (AddLiteral). It is safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
	replacer *strings.Replacer
}

// NewRedactor returns a Redactor loaded with DefaultPatterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: DefaultPatterns()}
}

// AddPattern registers a secret format. If the pattern has a capture
// group, the group is kept and only the rest of the match is hidden.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral registers a secret value, such as the configured token.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.literals, secret) {
		return
	}
	r.literals = append(r.literals, secret)
	// Longest first, so a secret that contains another is hidden whole.
	slices.SortFunc(r.literals, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	pairs := make([]string, 0, 2*len(r.literals))
	for _, lit := range r.literals {
		pairs = append(pairs, lit, RedactPlaceholder)
	}
	r.replacer = strings.NewReplacer(pairs...)
}

// Redact returns s with every literal and pattern match replaced by
// RedactPlaceholder. Literals go first so a configured token is hidden
// whole even where a pattern would match only part of it.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	replacer, patterns := r.replacer, r.patterns
	r.mu.RUnlock()

	if replacer != nil {
		s = replacer.Replace(s)
	}
	for _, p := range patterns {
		if p.NumSubexp() > 0 {
			s = p.ReplaceAllString(s, "${1}"+RedactPlaceholder)
		} else {
			s = p.ReplaceAllLiteralString(s, RedactPlaceholder)
		}
	}
	return s
}

// RedactMap hides secrets in a decoded YAML or JSON document in place:
// non-empty strings under secret-looking keys are replaced whole, other
// strings go through Redact. Used by `tgbot config check --show`.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		m[k] = r.redactValue(k, v)
	}
}

func (r *Redactor) redactValue(key string, v any) any {
	switch val := v.(type) {
	case string:
		if val != "" && secretKeyPattern.MatchString(key) {
			return RedactPlaceholder
		}
		return r.Redact(val)
	case map[string]any:
		r.RedactMap(val)
	case []any:
		for i, item := range val {
			val[i] = r.redactValue(key, item)
		}
	}
	return v
}

// DefaultPatterns returns the formats of Telegram bot tokens and webhook
// secrets.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Bot token as issued by BotFather: <bot id>:<35 char secret>.
		// No word boundary, so tokens inside /bot<token>/ URL paths match too.
		regexp.MustCompile(`[0-9]{5,15}:[A-Za-z0-9_-]{30,}`),
		// The secret_token query parameter of setWebhook.
		regexp.MustCompile(`(secret_token=)[^&\s"]+`),
	}
}
