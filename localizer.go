package wording

import (
	"context"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	xlanguage "golang.org/x/text/language"

	"github.com/pitabwire/wording/language"
)

// localizerState caches the i18n bundle derived from the wording cache. The
// bundle is rebuilt lazily whenever the cache version moves.
type localizerState struct {
	mu      sync.Mutex
	bundle  *i18n.Bundle
	version uint64
}

// Bundle exposes the cached wording as a go-i18n bundle, with every flattened
// document key registered as a message id. The bundle tracks cache updates,
// so holding onto a returned bundle across a sync run serves stale content.
func (s *Service) Bundle() *i18n.Bundle {
	s.localizer.mu.Lock()
	defer s.localizer.mu.Unlock()

	version := s.cache.Version()
	if s.localizer.bundle != nil && s.localizer.version == version {
		return s.localizer.bundle
	}

	defaultTag, err := xlanguage.Parse(s.defaultLocale)
	if err != nil {
		defaultTag = xlanguage.English
	}

	bundle := i18n.NewBundle(defaultTag)

	for _, locale := range s.cache.Locales() {
		tag, tagErr := xlanguage.Parse(locale)
		if tagErr != nil {
			continue
		}

		doc, ok := s.cache.Get(locale)
		if !ok {
			continue
		}

		flat := doc.Flatten()
		messages := make([]*i18n.Message, 0, len(flat))
		for id, other := range flat {
			messages = append(messages, &i18n.Message{ID: id, Other: other})
		}

		if len(messages) > 0 {
			_ = bundle.AddMessages(tag, messages...)
		}
	}

	s.localizer.bundle = bundle
	s.localizer.version = version
	return bundle
}

// Translate performs a quick translation based on the supplied message id.
func (s *Service) Translate(ctx context.Context, request any, messageID string) string {
	return s.TranslateWithMap(ctx, request, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the supplied message id.
func (s *Service) TranslateWithMap(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
) string {
	return s.TranslateWithMapAndCount(ctx, request, messageID, variables, 1)
}

// TranslateWithMapAndCount performs a translation with variables based on the supplied message id and can pluralize.
func (s *Service) TranslateWithMapAndCount(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
	count int,
) string {
	var languageSlice []string

	switch v := request.(type) {
	case nil:
		languageSlice = []string{s.ActiveLocale()}

	case context.Context:
		languageSlice = language.FromContext(v)

	case string:
		languageSlice = []string{v}

	case []string:
		languageSlice = v

	default:
		logger := s.Log(ctx).WithField("messageID", messageID).WithField("variables", variables)
		logger.Warn("TranslateWithMapAndCount -- no valid request object found, use nil, string, []string or context")
		return messageID
	}

	if len(languageSlice) == 0 {
		languageSlice = []string{s.ActiveLocale()}
	}

	localizer := i18n.NewLocalizer(s.Bundle(), languageSlice...)

	transVersion, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID},
		TemplateData:   variables,
		PluralCount:    count,
	})

	if err != nil {
		logger := s.Log(ctx).WithError(err)
		logger.Error("TranslateWithMapAndCount -- could not perform translation")
	}

	if transVersion == "" {
		// An id with no registered message anywhere localizes to nothing;
		// surface the id instead so callers never render a blank.
		return messageID
	}

	return transVersion
}
