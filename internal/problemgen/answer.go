package problemgen

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CheckAnswer compares the learner's response against the question.
// Returns true if the answer is correct.
//
// Multiple choice: case-insensitive exact match against the correct
// option's text. Option numbers typed at a terminal are resolved to text
// by the caller.
//
// Free input, after Normalize on both sides:
//   - exact match
//   - both numeric: |a-b| <= max(0.1% of |correct|, 0.01)
//   - both fractions "p/q": decimal values differ by less than 1e-4
func CheckAnswer(response string, q *Question) bool {
	response = strings.TrimSpace(response)
	if response == "" {
		return false
	}
	if q.IsMultipleChoice() {
		return checkMultipleChoice(response, q)
	}
	return checkFreeInput(response, q.CorrectAnswer)
}

func checkMultipleChoice(response string, q *Question) bool {
	correct := strings.TrimSpace(q.CorrectText())
	return correct != "" && strings.EqualFold(response, correct)
}

func checkFreeInput(response, correct string) bool {
	user := Normalize(response)
	want := Normalize(correct)
	if want == "" {
		return false
	}
	if user == want {
		return true
	}

	if u, err := parseNumber(user); err == nil {
		if c, err := parseNumber(want); err == nil {
			tol := math.Max(math.Abs(c)*0.001, 0.01)
			return math.Abs(u-c) <= tol
		}
	}

	if un, ud, err := parseFraction(user); err == nil && ud != 0 {
		if cn, cd, err := parseFraction(want); err == nil && cd != 0 {
			return math.Abs(float64(un)/float64(ud)-float64(cn)/float64(cd)) < 1e-4
		}
	}
	return false
}

// Normalize lower-cases s, strips diacritics, turns decimal commas into
// periods and collapses runs of whitespace. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = strings.ReplaceAll(s, ",", ".")
	return strings.Join(strings.Fields(s), " ")
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, " ", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return num, den, nil
}
