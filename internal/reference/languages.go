// Package reference holds the static language and model tables shown in the
// settings screen, and the helpers that resolve free text against them.
package reference

// LanguageOption is one selectable transcription language.
type LanguageOption struct {
	Code  string
	Label string
}

// AutoLanguage lets the engine detect the spoken language.
const AutoLanguage = "auto"

// Languages is the ordered language table. Codes are unique.
var Languages = []LanguageOption{
	{Code: AutoLanguage, Label: "Auto-detect"},
	{Code: "en", Label: "English"},
	{Code: "zh", Label: "Chinese"},
	{Code: "yue", Label: "Cantonese"},
	{Code: "ja", Label: "Japanese"},
	{Code: "ko", Label: "Korean"},
	{Code: "ar", Label: "Arabic"},
	{Code: "de", Label: "German"},
	{Code: "fr", Label: "French"},
	{Code: "es", Label: "Spanish"},
	{Code: "pt", Label: "Portuguese"},
	{Code: "it", Label: "Italian"},
	{Code: "ru", Label: "Russian"},
	{Code: "id", Label: "Indonesian"},
	{Code: "th", Label: "Thai"},
	{Code: "vi", Label: "Vietnamese"},
	{Code: "tr", Label: "Turkish"},
	{Code: "hi", Label: "Hindi"},
	{Code: "ms", Label: "Malay"},
	{Code: "nl", Label: "Dutch"},
	{Code: "sv", Label: "Swedish"},
	{Code: "da", Label: "Danish"},
	{Code: "fi", Label: "Finnish"},
	{Code: "pl", Label: "Polish"},
	{Code: "cs", Label: "Czech"},
	{Code: "fil", Label: "Filipino"},
	{Code: "fa", Label: "Persian"},
	{Code: "el", Label: "Greek"},
	{Code: "hu", Label: "Hungarian"},
	{Code: "mk", Label: "Macedonian"},
	{Code: "ro", Label: "Romanian"},
}

// Display renders an option the way the language field shows it.
func Display(opt LanguageOption) string {
	return opt.Label + " (" + opt.Code + ")"
}

// LanguageByCode returns the table entry for an exact code.
func LanguageByCode(code string) (LanguageOption, bool) {
	for _, opt := range Languages {
		if opt.Code == code {
			return opt, true
		}
	}
	return LanguageOption{}, false
}
