package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the recognition locale used when none is configured.
const Default = "es-ES"

// Locale is a recognition locale such as "es-ES" or "en".
type Locale struct {
	Code       string // canonical BCP 47 tag (e.g., "es-ES")
	Base       string // ISO 639-1 part (e.g., "es"), what batch providers accept
	Name       string // English name (e.g., "European Spanish")
	NativeName string // self name (e.g., "español de España")
}

// Parse validates code and returns its Locale. Underscores are accepted in
// place of dashes ("es_ES"). An empty code yields the Default locale.
func Parse(code string) (Locale, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = Default
	}
	tag, err := textlang.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return Locale{}, fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, conf := tag.Base()
	if conf == textlang.No {
		return Locale{}, fmt.Errorf("invalid language %q: unknown base language", code)
	}
	return Locale{
		Code:       tag.String(),
		Base:       base.String(),
		Name:       display.English.Tags().Name(tag),
		NativeName: display.Self.Name(tag),
	}, nil
}

// IsValid returns true if code parses as a locale. Empty means Default.
func IsValid(code string) bool {
	_, err := Parse(code)
	return err == nil
}

// BaseCode returns the language part of code, or "" when it does not parse.
func BaseCode(code string) string {
	l, err := Parse(code)
	if err != nil {
		return ""
	}
	return l.Base
}

// Label returns a human-readable label for a locale code.
// Example: "es" -> "Spanish (es)", "en-US" -> "American English (en-US)".
func Label(code string) string {
	l, err := Parse(code)
	if err != nil || l.Name == "" {
		return fmt.Sprintf("language '%s'", code)
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

// Suggestions lists the locales offered by the configure form.
func Suggestions() []string {
	return []string{"es-ES", "es-419", "es-MX", "es-AR", "en-US", "en-GB", "pt-BR", "fr-FR", "it-IT", "de-DE"}
}
