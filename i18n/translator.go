package i18n

import "fmt"

// Translator renders localized diagnostic messages for failure codes.
// data supplies the values interpolated into the message (for example,
// "value" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	get := func(k string) string { return data[k] }
	if t.lang == "ja" {
		if msg, ok := jaMessage(code, get); ok {
			return msg
		}
	}
	return enMessage(code, get)
}

// jaMessage renders the codes the Japanese dictionary covers. Uncovered
// codes fall back to the English rendering, never to the bare code.
func jaMessage(code string, get func(string) string) (string, bool) {
	switch code {
	case "predicate_failed":
		return fmt.Sprintf("値 '%s' は述語 '%s' を満たしません", get("value"), get("pred")), true
	case "validation_panic":
		return fmt.Sprintf("検証中にパニックが発生しました: %s", get("cause")), true
	case "type_mismatch":
		return fmt.Sprintf("値 '%s' は %s ではありません", get("value"), get("type")), true
	case "not_in_set":
		return fmt.Sprintf("値 '%s' は %s に含まれません", get("value"), get("set")), true
	case "not_in_enum":
		return fmt.Sprintf("値 '%s' は列挙 '%s' のメンバーではありません", get("value"), get("enum")), true
	case "missing_key":
		return fmt.Sprintf("マッピングにキー %s がありません", get("key")), true
	case "not_a_mapping":
		return "値はマッピング型ではありません", true
	case "not_a_collection":
		return "値はコレクション型ではありません", true
	case "not_a_tuple":
		return "値はタプル型ではありません", true
	case "length_mismatch":
		return fmt.Sprintf("%s 個の値が必要ですが %s 個でした", get("want"), get("got")), true
	case "missing_field":
		return fmt.Sprintf("オブジェクトに属性 '%s' がありません", get("field")), true
	case "conform_break":
		return fmt.Sprintf("'%s' の正規化器は値を変換できませんでした", get("tag")), true
	case "not_a_string":
		return fmt.Sprintf("値 '%s' は文字列ではありません", get("value")), true
	case "not_a_number":
		return fmt.Sprintf("値 '%s' は数値ではありません", get("value")), true
	case "not_a_bool":
		return fmt.Sprintf("値 '%s' は真偽値ではありません", get("value")), true
	case "not_a_struct":
		return fmt.Sprintf("値 '%s' は構造体ではありません", get("value")), true
	}
	return "", false
}

func enMessage(code string, get func(string) string) string {
	switch code {
	case "predicate_failed":
		return fmt.Sprintf("value '%s' does not satisfy predicate '%s'", get("value"), get("pred"))
	case "validation_panic":
		return fmt.Sprintf("panic occurred during validation: %s", get("cause"))
	case "type_mismatch":
		return fmt.Sprintf("value '%s' is not a %s", get("value"), get("type"))
	case "not_in_set":
		return fmt.Sprintf("value '%s' not in %s", get("value"), get("set"))
	case "not_in_enum":
		return fmt.Sprintf("value '%s' is not a member of enum '%s'", get("value"), get("enum"))
	case "missing_key":
		return fmt.Sprintf("mapping missing key %s", get("key"))
	case "not_a_mapping":
		return "value is not a mapping type"
	case "not_a_collection":
		return "value is not a collection type"
	case "not_a_tuple":
		return "value is not a tuple type"
	case "length_mismatch":
		return fmt.Sprintf("expected %s values; found %s", get("want"), get("got"))
	case "coll_kind":
		return fmt.Sprintf("collection is a %s, not a %s", get("type"), get("want"))
	case "coll_count":
		return fmt.Sprintf("collection length %s does not equal %s", get("got"), get("count"))
	case "coll_too_short":
		return fmt.Sprintf("collection length %s does not meet minimum length %s", get("got"), get("min"))
	case "coll_too_long":
		return fmt.Sprintf("collection length %s exceeds max length %s", get("got"), get("max"))
	case "missing_field":
		return fmt.Sprintf("object missing attribute '%s'", get("field"))
	case "conform_break":
		return fmt.Sprintf("conformer of '%s' could not conform the value", get("tag"))
	case "not_a_string":
		return fmt.Sprintf("value '%s' is not a string", get("value"))
	case "str_length":
		return fmt.Sprintf("string length %s does not equal %s", get("got"), get("length"))
	case "str_too_short":
		return fmt.Sprintf("string '%s' does not meet minimum length %s", get("value"), get("min"))
	case "str_too_long":
		return fmt.Sprintf("string '%s' exceeds maximum length %s", get("value"), get("max"))
	case "pattern_mismatch":
		return fmt.Sprintf("string '%s' does not match pattern '%s'", get("value"), get("pattern"))
	case "not_a_number":
		return fmt.Sprintf("value '%s' is not numeric", get("value"))
	case "num_too_small":
		return fmt.Sprintf("number '%s' is smaller than minimum %s", get("value"), get("min"))
	case "num_too_big":
		return fmt.Sprintf("number '%s' is bigger than maximum %s", get("value"), get("max"))
	case "not_a_bool":
		return fmt.Sprintf("value '%s' is not boolean", get("value"))
	case "bool_not_allowed":
		return fmt.Sprintf("value '%s' not in allowed boolean values", get("value"))
	case "not_bytes":
		return fmt.Sprintf("value '%s' is not a byte slice", get("value"))
	case "bytes_too_short":
		return fmt.Sprintf("bytes do not meet minimum length %s", get("min"))
	case "bytes_too_long":
		return fmt.Sprintf("bytes exceed maximum length %s", get("max"))
	case "not_an_instant":
		return fmt.Sprintf("value '%s' is not a time instant", get("value"))
	case "inst_not_before":
		return fmt.Sprintf("instant '%s' is not before %s", get("value"), get("bound"))
	case "inst_not_after":
		return fmt.Sprintf("instant '%s' is not after %s", get("value"), get("bound"))
	case "not_a_struct":
		return fmt.Sprintf("value '%s' is not a struct", get("value"))
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
