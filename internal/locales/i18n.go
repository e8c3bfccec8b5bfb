// Package locales resolves user-facing messages through go-i18n bundles
// loaded from the embedded *.json files.
package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

var (
	bundle          *i18n.Bundle
	defaultLanguage language.Tag // Store the parsed default language tag
)

// Init initializes the i18n bundle by loading the embedded language files and
// setting the default language. An unparsable language code falls back to
// English. English is always the bundle's source language.
func Init(defaultLangCode string) error {
	var err error
	defaultLanguage, err = language.Parse(defaultLangCode)
	if err != nil {
		log.Printf("WARN: Failed to parse default language code '%s': %v. Falling back to English.", defaultLangCode, err)
		defaultLanguage = language.English
	}

	b := i18n.NewBundle(language.English)
	// Register the unmarshal function for JSON files
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	// Load translation files from the root of the embedded filesystem
	entries, err := localeFS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		// Only JSON message files are loaded
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, entry.Name()); err != nil {
			return fmt.Errorf("failed to load message file '%s': %w", entry.Name(), err)
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no message files found in embedded locales")
	}

	// Publish the bundle only once every file loaded
	bundle = b
	log.Printf("i18n bundle initialized with %d file(s). Default language: %s", loaded, defaultLanguage.String())
	return nil
}

// DefaultLanguageTag returns the language configured by Init.
func DefaultLanguageTag() language.Tag {
	return defaultLanguage
}

// NewLocalizer creates a localizer for the given language preferences.
// It takes language tags (e.g., "en", "ru") or an Accept-Language header
// string. The configured default language is always tried last.
func NewLocalizer(langPrefs ...string) *i18n.Localizer {
	if bundle == nil {
		log.Panicln("Attempted to create localizer before i18n bundle initialization.")
	}
	prefs := append(langPrefs, defaultLanguage.String())
	return i18n.NewLocalizer(bundle, prefs...)
}

// GetMessage retrieves and formats a message by its ID using the provided localizer.
// msgID: The ID of the message (e.g., "MsgCheckingStatus").
// templateData: Optional map for template variables (e.g., map[string]interface{}{"Name": "Memes"}).
// pluralCount: Optional pointer to an int for pluralization rules.
// Messages missing from the localizer's languages fall back to English, then
// to the message ID itself.
func GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]interface{}, pluralCount *int) string {
	config := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}
	// Add plural count if provided
	if pluralCount != nil {
		config.PluralCount = *pluralCount
	}

	msg, err := localizer.Localize(config)
	if err == nil {
		return msg
	}

	// Create a localizer specifically for English fallback
	englishLocalizer := i18n.NewLocalizer(bundle, language.English.String())
	fallback, fallbackErr := englishLocalizer.Localize(config)
	if fallbackErr == nil {
		return fallback
	}

	// If English also fails, log and return the message ID
	log.Printf("ERROR: Failed to localize message ID '%s': %v", msgID, err)
	return msgID
}
