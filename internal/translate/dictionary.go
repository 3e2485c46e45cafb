package translate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dictionary хранит фразы по парам языков: from -> to -> фраза (в нижнем регистре) -> перевод.
type Dictionary struct {
	entries map[string]map[string]map[string]string
}

func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]map[string]map[string]string)}
}

func (d *Dictionary) Add(from, to, phrase, translation string) {
	from, to = baseOrLower(from), baseOrLower(to)
	if d.entries[from] == nil {
		d.entries[from] = make(map[string]map[string]string)
	}
	if d.entries[from][to] == nil {
		d.entries[from][to] = make(map[string]string)
	}
	d.entries[from][to][phraseKey(phrase)] = translation
}

// Lookup без учёта регистра и крайних пробелов.
func (d *Dictionary) Lookup(from, to, text string) (string, bool) {
	tr, ok := d.entries[from][to][phraseKey(text)]
	return tr, ok
}

func (d *Dictionary) Len() int {
	n := 0
	for _, byTo := range d.entries {
		for _, phrases := range byTo {
			n += len(phrases)
		}
	}
	return n
}

// LoadFile дополняет словарь из YAML вида:
//
//	en:
//	  es:
//	    hello: Hola
func (d *Dictionary) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dictionary read %s: %w", path, err)
	}
	var raw map[string]map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dictionary parse %s: %w", path, err)
	}
	for from, byTo := range raw {
		for to, phrases := range byTo {
			for phrase, tr := range phrases {
				d.Add(from, to, phrase, tr)
			}
		}
	}
	return nil
}

func phraseKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuiltinDictionary: фразы, с которыми поставляется заглушка.
func BuiltinDictionary() *Dictionary {
	d := NewDictionary()
	for _, e := range builtin {
		d.Add(e[0], e[1], e[2], e[3])
	}
	return d
}

var builtin = [][4]string{
	{"en", "es", "Hello", "Hola"},
	{"en", "es", "Good morning", "Buenos días"},
	{"en", "es", "Good night", "Buenas noches"},
	{"en", "es", "How are you?", "¿Cómo estás?"},
	{"en", "es", "Thank you", "Gracias"},
	{"en", "es", "Goodbye", "Adiós"},
	{"en", "es", "Yes", "Sí"},
	{"en", "es", "See you later", "Hasta luego"},
	{"en", "fr", "Hello", "Bonjour"},
	{"en", "fr", "Good morning", "Bonjour"},
	{"en", "fr", "How are you?", "Comment ça va ?"},
	{"en", "fr", "Thank you", "Merci"},
	{"en", "fr", "Goodbye", "Au revoir"},
	{"en", "de", "Hello", "Hallo"},
	{"en", "de", "Good morning", "Guten Morgen"},
	{"en", "de", "Thank you", "Danke"},
	{"en", "de", "Goodbye", "Auf Wiedersehen"},
	{"en", "it", "Hello", "Ciao"},
	{"en", "it", "Thank you", "Grazie"},
	{"en", "pt", "Hello", "Olá"},
	{"en", "pt", "Thank you", "Obrigado"},
	{"en", "ru", "Hello", "Привет"},
	{"en", "ru", "Thank you", "Спасибо"},
	{"en", "ja", "Hello", "こんにちは"},
	{"en", "ja", "Thank you", "ありがとう"},
	{"en", "zh", "Hello", "你好"},
	{"en", "zh", "Thank you", "谢谢"},
	{"en", "ko", "Hello", "안녕하세요"},
	{"en", "ko", "Thank you", "감사합니다"},
	{"en", "ar", "Hello", "مرحبا"},
	{"en", "ar", "Thank you", "شكرا"},
	{"en", "el", "Hello", "Γεια σας"},
	{"es", "en", "Hola", "Hello"},
	{"es", "en", "Gracias", "Thank you"},
	{"es", "en", "Buenos días", "Good morning"},
	{"es", "en", "Adiós", "Goodbye"},
	{"fr", "en", "Bonjour", "Hello"},
	{"fr", "en", "Merci", "Thank you"},
	{"de", "en", "Hallo", "Hello"},
	{"de", "en", "Danke", "Thank you"},
	{"ru", "en", "Привет", "Hello"},
	{"ru", "en", "Спасибо", "Thank you"},
	{"ja", "en", "こんにちは", "Hello"},
	{"zh", "en", "你好", "Hello"},
	{"ko", "en", "안녕하세요", "Hello"},
	{"ar", "en", "مرحبا", "Hello"},
	{"el", "en", "Γεια σας", "Hello"},
}
