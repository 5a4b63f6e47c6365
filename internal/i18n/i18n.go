// Package i18n resolves UI strings for the active language.
//
// Lookup falls back from the active language to the default language and
// finally to the raw key, so a missing translation degrades to showing the
// key name instead of failing.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"cropadvisor/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Tables maps a language to its key -> string table.
type Tables map[types.Language]map[string]string

// LoadEmbedded parses the locale tables compiled into the binary.
func LoadEmbedded() (Tables, error) {
	tables := make(Tables, len(types.SupportedLanguages))
	for _, lang := range types.SupportedLanguages {
		raw, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("reading %s locale: %w", lang, err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parsing %s locale: %w", lang, err)
		}
		tables[lang] = table
	}
	return tables, nil
}

// Translator holds the string tables and the active language.
// It is safe for concurrent use.
type Translator struct {
	mu      sync.RWMutex
	tables  Tables
	current types.Language
	subs    map[int]func(types.Language)
	nextSub int
	logger  *slog.Logger
}

// New creates a Translator over tables with the default language active.
func New(tables Tables, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		tables:  tables,
		current: types.DefaultLanguage,
		subs:    make(map[int]func(types.Language)),
		logger:  logger,
	}
}

// Translate resolves key in the active language.
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	lang := t.current
	t.mu.RUnlock()
	return t.TranslateIn(lang, key)
}

// TranslateIn resolves key in lang: lang's table, then the default
// language's table, then key itself.
func (t *Translator) TranslateIn(lang types.Language, key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.tables[lang][key]; ok && s != "" {
		return s
	}
	if s, ok := t.tables[types.DefaultLanguage][key]; ok && s != "" {
		return s
	}
	return key
}

// Translatef resolves key and substitutes each {name} placeholder with
// params[name].
func (t *Translator) Translatef(key string, params map[string]string) string {
	s := t.Translate(key)
	for name, v := range params {
		s = strings.ReplaceAll(s, "{"+name+"}", v)
	}
	return s
}

// Has reports whether the active language itself defines key.
func (t *Translator) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.tables[t.current][key]
	return ok && s != ""
}

// Language returns the active language.
func (t *Translator) Language() types.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Available returns the languages that have a table, sorted by code.
func (t *Translator) Available() []types.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Language, 0, len(t.tables))
	for lang := range t.tables {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetLanguage switches the active language and notifies subscribers.
// Unsupported codes are rejected with a validation error.
func (t *Translator) SetLanguage(lang types.Language) error {
	if !lang.IsSupported() {
		return types.NewAppError(
			types.ErrCodeValidationLanguage,
			fmt.Sprintf("unsupported language %q", lang),
			nil,
		)
	}

	t.mu.Lock()
	changed := t.current != lang
	t.current = lang
	subs := make([]func(types.Language), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	if !changed {
		return nil
	}
	t.logger.Debug("language changed", "language", lang)

	// Subscribers run outside the lock so they can call back into Translate.
	for _, fn := range subs {
		fn(lang)
	}
	return nil
}

// Subscribe registers fn to be called after every language change and
// returns a function that removes the registration.
func (t *Translator) Subscribe(fn func(types.Language)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}
