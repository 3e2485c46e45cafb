// Package translate реализует заглушку перевода: словарь фраз и определение языка по письменности.
// Настоящий сервис перевода подключается через тот же интерфейс Translator.
package translate

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage: язык, если письменность не распознана.
const DefaultLanguage = "en"

var ErrInvalidLanguage = errors.New("invalid language code")

type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
	DetectLanguage(text string) string
}

// Detector: стратегия определения языка.
type Detector interface {
	Detect(text string) string
}

// Stub: детерминированный офлайн-переводчик.
type Stub struct {
	dict     *Dictionary
	detector Detector
}

func NewStub(dict *Dictionary, detector Detector) *Stub {
	if dict == nil {
		dict = BuiltinDictionary()
	}
	if detector == nil {
		detector = NewScriptDetector(DefaultLanguage)
	}
	return &Stub{dict: dict, detector: detector}
}

// Translate при одинаковых языках возвращает текст без изменений, при фразе в словаре перевод,
// иначе помеченный оригинал "[XX] текст".
func (s *Stub) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, dst := baseOrLower(from), baseOrLower(to)
	if src == dst || text == "" {
		return text, nil
	}
	if tr, ok := s.dict.Lookup(src, dst, text); ok {
		return tr, nil
	}
	return Fallback(to, text), nil
}

func (s *Stub) DetectLanguage(text string) string {
	return s.detector.Detect(text)
}

// Fallback: формат заглушки для фраз без перевода. Формат фиксирован, на нём держится совместимость.
func Fallback(to, text string) string {
	return "[" + strings.ToUpper(to) + "] " + text
}

// Normalize приводит код языка к базовому ISO 639 ("es-MX" -> "es", "EN" -> "en").
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrInvalidLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", ErrInvalidLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", ErrInvalidLanguage
	}
	return base.String(), nil
}

func baseOrLower(code string) string {
	if n, err := Normalize(code); err == nil {
		return n
	}
	return strings.ToLower(strings.TrimSpace(code))
}
