// Package lang formats detected labels for display in the draft language.
package lang

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tags = map[string]language.Tag{
	"en-us": language.AmericanEnglish,
	"de":    language.German,
}

// Title converts an upper case label, e.g. "CURSED HOLLOW", to title case
// using the casing rules of locale. Unknown locales use English.
func Title(locale, s string) string {
	t, ok := tags[strings.ToLower(locale)]
	if !ok {
		t = language.AmericanEnglish
	}
	return cases.Title(t).String(strings.ToLower(s))
}

// Upper converts a display name to the upper case form OCR labels are
// compared in.
func Upper(locale, s string) string {
	t, ok := tags[strings.ToLower(locale)]
	if !ok {
		t = language.AmericanEnglish
	}
	return cases.Upper(t).String(s)
}
