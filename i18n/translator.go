package i18n

import (
	"strings"
	"sync"
)

// Message keys for the built-in default messages.
const (
	InvalidShape     = "invalid_shape"
	UnknownField     = "unknown_field"
	CannotStoreValue = "cannot_store_value"
	NotAList         = "not_a_list"
	NotAString       = "not_a_string"
	NotAnObject      = "not_an_object"
	NotAnInteger     = "not_an_integer"
	InvalidBoolean   = "invalid_boolean"
	InvalidDate      = "invalid_date"
	InvalidDatetime  = "invalid_datetime"
	InvalidFloat     = "invalid_float"
	InvalidOption    = "invalid_option" // data: value
	EmptyGroup       = "empty_group"
	Required         = "required"
	Pattern          = "pattern"
	Expression       = "expression"
)

// Translator retrieves localized messages for message keys.
// data provides optional metadata to embed in the message (for example,
// "value").
type Translator interface {
	Message(key string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		InvalidShape:     "Data must be a dictionary",
		UnknownField:     "Unknown field",
		CannotStoreValue: "Field cannot store a value",
		NotAList:         "Field value must be a list",
		NotAString:       "Value must be a string",
		NotAnObject:      "Value must be an object",
		NotAnInteger:     "Value is not an integer",
		InvalidBoolean:   "Value is not a valid boolean type",
		InvalidDate:      "Value is not a valid date",
		InvalidDatetime:  "Value is not a valid datetime",
		InvalidFloat:     "Value is not a valid float",
		InvalidOption:    "Incorrect value: {value}",
		EmptyGroup:       "Objects cannot be empty",
		Required:         "Required field",
		Pattern:          "Field does not satisfy regular expression",
		Expression:       "Field does not satisfy expression",
	},
	"ja": {
		InvalidShape:     "データはオブジェクトである必要があります",
		UnknownField:     "未知のフィールドです",
		CannotStoreValue: "このフィールドは値を保持できません",
		NotAList:         "値はリストである必要があります",
		NotAString:       "値は文字列である必要があります",
		NotAnObject:      "値はオブジェクトである必要があります",
		NotAnInteger:     "値が整数ではありません",
		InvalidBoolean:   "値が真偽値として不正です",
		InvalidDate:      "日付の形式が不正です",
		InvalidDatetime:  "日時の形式が不正です",
		InvalidFloat:     "数値の形式が不正です",
		InvalidOption:    "不正な値です: {value}",
		EmptyGroup:       "オブジェクトを空にすることはできません",
		Required:         "必須項目です",
		Pattern:          "正規表現に一致しません",
		Expression:       "条件式を満たしていません",
	},
}

func (t dictTranslator) Message(key string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][key]
	if !ok {
		msg, ok = dictionaries["en"][key]
	}
	if !ok {
		return key
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given key using the current Translator.
func T(key string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(key, data)
}
