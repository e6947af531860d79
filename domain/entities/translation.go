package entities

import "strings"

// AutoLanguage asks the provider to detect the source language
const AutoLanguage = "auto"

// EnglishLanguage is the target used for every sign conversion
const EnglishLanguage = "en"

// TranslationRequest is one text to translate between two languages
type TranslationRequest struct {
	Text       string `json:"q"`
	SourceLang string `json:"source"`
	TargetLang string `json:"target"`
}

// Validate rejects blank text before any provider is contacted
func (r TranslationRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyInput
	}
	return nil
}

// WithDefaults fills the languages the way the HTTP proxy does
func (r TranslationRequest) WithDefaults() TranslationRequest {
	if r.SourceLang == "" {
		r.SourceLang = AutoLanguage
	}
	if r.TargetLang == "" {
		r.TargetLang = EnglishLanguage
	}
	return r
}

// TranslationResult holds the text returned by a single successful provider call
type TranslationResult struct {
	TranslatedText string `json:"translatedText"`
	Provider       string `json:"-"`
}
