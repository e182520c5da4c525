// Package language tracks the active locale and moves language hints through
// contexts and queue metadata.
package language

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

type contextKey string

func (c contextKey) String() string {
	return "wording/language/" + string(c)
}

const ctxKeyLanguage = contextKey("languageKey")

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

// ToMap writes the language hint into queue metadata.
func ToMap(m map[string]string, lang []string) map[string]string {
	m["lang"] = strings.Join(lang, ",")
	return m
}

// FromMap reads a language hint out of queue metadata.
func FromMap(m map[string]string) []string {
	lang, ok := m["lang"]
	if !ok {
		return nil
	}
	return strings.Split(lang, ",")
}

// Source is a live feed of the active locale. Current never blocks; Watch
// delivers every change until ctx is done.
type Source interface {
	Current() string
	Watch(ctx context.Context) <-chan string
}

// Matcher normalizes arbitrary language identifiers against the supported
// locale set, so "en-US" selects "en".
type Matcher struct {
	supported []string
	matcher   language.Matcher
}

// NewMatcher builds a matcher over the supported locales. Locales that do not
// parse as BCP 47 tags are matched by exact string only.
func NewMatcher(supported []string) *Matcher {
	tags := make([]language.Tag, 0, len(supported))
	for _, locale := range supported {
		tag, err := language.Parse(locale)
		if err != nil {
			tag = language.Und
		}
		tags = append(tags, tag)
	}

	return &Matcher{
		supported: append([]string(nil), supported...),
		matcher:   language.NewMatcher(tags),
	}
}

// Normalize maps a requested locale onto one of the supported locales. An
// unmatchable request falls back to the first supported locale.
func (m *Matcher) Normalize(requested string) string {
	for _, locale := range m.supported {
		if locale == requested {
			return locale
		}
	}

	tag, err := language.Parse(requested)
	if err == nil {
		_, index, confidence := m.matcher.Match(tag)
		if confidence > language.No && index < len(m.supported) {
			return m.supported[index]
		}
	}

	return m.supported[0]
}
