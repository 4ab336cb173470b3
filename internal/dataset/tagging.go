package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// ReadTerms reads one identity term per line, skipping blank lines.
func ReadTerms(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("terms: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" {
			terms = append(terms, term)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("terms: read %s: %w", path, err)
	}
	return terms, nil
}

// TagSubgroups adds one subgroup column per term, true where the row's text
// contains the term as a whole word, ignoring case.
func TagSubgroups(d *Dataset, terms []string) error {
	if d.text == nil {
		return fmt.Errorf("dataset has no text column to tag")
	}
	folder := cases.Fold()
	folded := make([]string, len(d.text))
	for i, text := range d.text {
		folded[i] = folder.String(text)
	}

	for _, term := range terms {
		needle := folder.String(term)
		members := make([]bool, len(folded))
		for i, text := range folded {
			members[i] = containsWord(text, needle)
		}
		if err := d.AddSubgroup(term, members); err != nil {
			return fmt.Errorf("tagging %q: %w", term, err)
		}
	}
	return nil
}

// ContainsTerm reports whether text contains term as a whole word, ignoring case.
func ContainsTerm(text, term string) bool {
	folder := cases.Fold()
	return containsWord(folder.String(text), folder.String(term))
}

// containsWord finds needle in text where it is not preceded or followed by
// a word character.
func containsWord(text, needle string) bool {
	if needle == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(needle); {
		i := strings.Index(text[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if boundaryBefore(text, start, needle) && boundaryAfter(text, end, needle) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, start int, needle string) bool {
	first, _ := utf8.DecodeRuneInString(needle)
	if !isWordRune(first) || start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(prev)
}

func boundaryAfter(text string, end int, needle string) bool {
	last, _ := utf8.DecodeLastRuneInString(needle)
	if !isWordRune(last) || end == len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
