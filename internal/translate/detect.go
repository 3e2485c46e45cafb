package translate

import "unicode"

type script struct {
	lang   string
	tables []*unicode.RangeTable
}

// Порядок важен: японский текст содержит иероглифы, корейский иногда ханчу,
// поэтому кана и хангыль проверяются раньше Han.
var scripts = []script{
	{"ar", []*unicode.RangeTable{unicode.Arabic}},
	{"ko", []*unicode.RangeTable{unicode.Hangul}},
	{"ja", []*unicode.RangeTable{unicode.Hiragana, unicode.Katakana}},
	{"zh", []*unicode.RangeTable{unicode.Han}},
	{"ru", []*unicode.RangeTable{unicode.Cyrillic}},
	{"el", []*unicode.RangeTable{unicode.Greek}},
}

// ScriptDetector определяет язык по наличию символов письменности.
// Это эвристика без оценки уверенности: латиница любого языка даёт язык по умолчанию.
type ScriptDetector struct {
	fallback string
}

func NewScriptDetector(fallback string) *ScriptDetector {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	return &ScriptDetector{fallback: fallback}
}

func (d *ScriptDetector) Detect(text string) string {
	for _, s := range scripts {
		for _, r := range text {
			if unicode.In(r, s.tables...) {
				return s.lang
			}
		}
	}
	return d.fallback
}
