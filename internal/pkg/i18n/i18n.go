package i18n

import (
	"embed"
	"encoding/json"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var supported = []language.Tag{language.English, language.Swahili}

var matcher = language.NewMatcher(supported)

type Translator struct {
	bundle   *goi18n.Bundle
	fallback language.Tag
}

// New loads the embedded locale files. defaultLocale is used when a
// request names no supported language; English fills missing messages.
func New(defaultLocale string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, file := range []string{"locales/active.en.json", "locales/active.sw.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, err
		}
	}
	fallback := language.English
	if tag, err := language.Parse(defaultLocale); err == nil {
		fallback = tag
	}
	return &Translator{bundle: bundle, fallback: fallback}, nil
}

// Match resolves an Accept-Language header to a supported tag.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	fallback := language.English
	if t != nil {
		fallback = t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	tag, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	base, _ := tag.Base()
	return language.Make(base.String())
}

// Translate renders messageID for lang. When the message is unknown the
// fallback text is returned unchanged.
func (t *Translator) Translate(lang language.Tag, messageID string, data map[string]interface{}, fallback string) string {
	if t == nil || messageID == "" {
		return fallback
	}
	loc := goi18n.NewLocalizer(t.bundle, lang.String(), language.English.String())
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return fallback
	}
	return msg
}
