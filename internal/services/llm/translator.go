package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voiceforge/internal/language"
	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

const translationPrompt = `You translate short passages for a speech synthesis engine.
Translate the user's text into %s (%s). Preserve meaning, tone and punctuation.
Do not add commentary or notes. Respond with JSON only: {"translation": "..."}`

// Completer is the subset of Client used by Translator.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Translator turns target text into the language of the source clip.
type Translator struct {
	client Completer
	logger *slog.Logger
}

// NewTranslator wraps an LLM client.
func NewTranslator(client Completer, logger *slog.Logger) *Translator {
	return &Translator{client: client, logger: logging.NewComponentLogger(logger, "translator")}
}

// Translate returns text rendered in targetLanguage, which accepts any code
// language.Normalize understands.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "translate", "input", "text is empty", nil)
	}
	code, err := language.Normalize(targetLanguage)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "translate", "language", targetLanguage, err)
	}
	if t.client == nil {
		return "", services.Wrap(services.ErrConfiguration, "translate", "init", "translation client not configured", nil)
	}

	started := time.Now()
	content, err := t.client.CompleteJSON(ctx, fmt.Sprintf(translationPrompt, language.DisplayName(code), code), text)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", "complete", "translation request failed", err)
	}
	var parsed struct {
		Translation string `json:"translation"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", "decode", "unparseable translation", err)
	}
	translated := strings.TrimSpace(parsed.Translation)
	if translated == "" {
		return "", services.Wrap(services.ErrExternalTool, "translate", "decode", "empty translation", nil)
	}

	t.logger.Info("text translated",
		logging.String("language", code),
		logging.Int("source_chars", len([]rune(text))),
		logging.Int("translated_chars", len([]rune(translated))),
		logging.Duration("elapsed", time.Since(started)),
	)
	return translated, nil
}
