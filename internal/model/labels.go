package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s.]+`)

// acronyms are rendered upper case inside labels.
var acronyms = map[string]string{
	"api":  "API",
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"llm":  "LLM",
	"pptx": "PPTX",
	"json": "JSON",
	"html": "HTML",
}

// DefaultLabeler converts a field name into a human-friendly label: words
// split on underscores, dashes and camelCase boundaries, first word capitalised
// and well-known acronyms upper cased ("api_key" becomes "API key").
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	var words []string
	for _, chunk := range splitWordsPattern.Split(name, -1) {
		if chunk == "" {
			continue
		}
		words = append(words, strings.Fields(splitCamel(chunk))...)
	}
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case acronyms[lower] != "":
			words[i] = acronyms[lower]
		case i == 0:
			words[i] = strings.ToUpper(lower[:1]) + lower[1:]
		default:
			words[i] = lower
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
