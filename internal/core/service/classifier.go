package service

import (
	"strconv"
	"strings"
)

// Classifier decides whether a piece of text, usually a commit message,
// belongs to a class.
type Classifier interface {
	Match(text string) bool
}

type ClassifierFunc func(text string) bool

func (f ClassifierFunc) Match(text string) bool {
	return f(text)
}

var (
	DefaultBugKeywords = []string{"fix", "bug", "error", "erro", "falha", "fail", "bug-fix", "correction"}
	// DefaultClosingKeywords are the words hosting services use to close an
	// issue from a commit message.
	DefaultClosingKeywords = []string{"close", "closes", "closed", "fix", "fixes", "fixed", "resolve", "resolves", "resolved"}
)

// KeywordClassifier matches text containing one of its words.
type KeywordClassifier struct {
	keywords map[string]struct{}
}

func NewKeywordClassifier(keywords ...string) *KeywordClassifier {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &KeywordClassifier{keywords: set}
}

// NewBugFixClassifier matches messages describing a bug fix.
func NewBugFixClassifier(extra ...string) *KeywordClassifier {
	return NewKeywordClassifier(append(append([]string{}, DefaultBugKeywords...), extra...)...)
}

func (c *KeywordClassifier) Match(text string) bool {
	for _, word := range tokens(text) {
		if _, ok := c.keywords[word]; ok {
			return true
		}
	}
	return false
}

// IssueReferenceClassifier matches messages that close an issue by number,
// such as "Fixes #42".
type IssueReferenceClassifier struct {
	keywords map[string]struct{}
}

func NewIssueReferenceClassifier() *IssueReferenceClassifier {
	set := make(map[string]struct{}, len(DefaultClosingKeywords))
	for _, k := range DefaultClosingKeywords {
		set[k] = struct{}{}
	}
	return &IssueReferenceClassifier{keywords: set}
}

func (c *IssueReferenceClassifier) Match(text string) bool {
	words := tokens(text)
	for i := 0; i+1 < len(words); i++ {
		if _, ok := c.keywords[words[i]]; !ok {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimPrefix(words[i+1], "#")); err == nil {
			return true
		}
	}
	return false
}

// tokens lowercases text and splits it on whitespace, trimming surrounding
// punctuation from each word.
func tokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'`")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
