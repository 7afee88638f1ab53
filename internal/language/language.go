package language

import (
	"fmt"
	"strings"
	"sync"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// commonCodes are the languages whose English names are accepted as input
// ("french", "German").
var commonCodes = []string{
	"ar", "cs", "da", "de", "el", "en", "es", "fa", "fi", "fr", "he", "hi",
	"hu", "id", "it", "ja", "kk", "ko", "nl", "no", "pl", "pt", "ro", "ru",
	"sv", "th", "tr", "uk", "vi", "zh",
}

// bibliographic maps ISO 639-2/B codes, which x/text does not parse, to
// ISO 639-1.
var bibliographic = map[string]string{
	"chi": "zh", "cze": "cs", "dut": "nl", "fre": "fr", "ger": "de",
	"gre": "el", "per": "fa", "rum": "ro",
}

var namesOnce = sync.OnceValue(func() map[string]string {
	namer := display.English.Languages()
	names := make(map[string]string, len(commonCodes))
	for _, code := range commonCodes {
		if name := namer.Name(xlanguage.Make(code)); name != "" {
			names[strings.ToLower(name)] = code
		}
	}
	return names
})

// Normalize resolves an ISO 639-1/639-2 code, an English language name or a
// BCP 47 tag ("en-US", "pt_BR") to an ISO 639-1 code.
func Normalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("language: empty code")
	}
	lower := strings.ToLower(trimmed)
	if iso, ok := bibliographic[lower]; ok {
		return iso, nil
	}
	if iso, ok := namesOnce()[lower]; ok {
		return iso, nil
	}
	tag, err := xlanguage.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("language: unrecognized code %q: %w", trimmed, err)
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return "", fmt.Errorf("language: unrecognized code %q", trimmed)
	}
	return base.String(), nil
}

// DisplayName returns the English name for code. Empty input yields
// "Unknown"; unrecognised input is echoed upper-cased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if iso, err := Normalize(trimmed); err == nil {
		if name := display.English.Languages().Name(xlanguage.Make(iso)); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}
