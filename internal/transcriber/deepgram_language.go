package transcriber

import (
	"strings"

	"github.com/leonardotrapani/aulavoz/internal/language"
)

// regional tags Deepgram accepts as-is; anything else is sent as its base language
var deepgramRegional = map[string]bool{
	"en-US": true, "en-GB": true, "en-AU": true, "en-IN": true, "en-NZ": true,
	"es-419": true, "pt-BR": true, "pt-PT": true, "fr-CA": true, "de-CH": true,
	"nl-BE": true, "ko-KR": true, "sv-SE": true, "da-DK": true,
}

func normalizeDeepgramLanguage(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	l, err := language.Parse(code)
	if err != nil {
		return code
	}
	if deepgramRegional[l.Code] {
		return l.Code
	}
	return l.Base
}
