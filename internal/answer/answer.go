// ABOUTME: Normalized answer payload types for Genie responses
// ABOUTME: Tagged variant over tabular results, plain messages, and errors

package answer

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the payload variant. Exactly one variant's fields are
// meaningful for a given payload.
type Kind string

const (
	KindTabular Kind = "tabular" // Columns/Rows/Description are set
	KindMessage Kind = "message" // Text is set
	KindError   Kind = "error"   // Detail is set
)

// Column describes one column of a tabular result. TypeName is the backend's
// type tag (e.g. "BIGINT", "DOUBLE", "STRING") and drives cell formatting.
type Column struct {
	Name     string
	TypeName string
}

// Payload is the normalized result of one conversation turn. Rows entries have
// the same length as Columns; cells hold whatever scalar the backend returned
// (nil, string, or a JSON number).
type Payload struct {
	Kind Kind

	// Tabular
	Columns     []Column
	Rows        [][]any
	Description string

	// Message
	Text string

	// Error
	Detail string
}

// Tabular builds a tabular payload.
func Tabular(columns []Column, rows [][]any, description string) Payload {
	return Payload{Kind: KindTabular, Columns: columns, Rows: rows, Description: description}
}

// Message builds a plain-text payload.
func Message(text string) Payload {
	return Payload{Kind: KindMessage, Text: text}
}

// Error builds an error payload. Detail is the user-facing string; internal
// error detail belongs in logs, never here.
func Error(detail string) Payload {
	return Payload{Kind: KindError, Detail: detail}
}

// FormatValue renders a single cell according to the column's type tag.
// Nil renders as "NULL". Decimal types get thousands separators and two
// decimal places, integer types thousands separators only. Anything that
// cannot be parsed for its claimed type falls back to its string form.
func FormatValue(v any, typeName string) string {
	if v == nil {
		return "NULL"
	}

	switch typeName {
	case "DECIMAL", "DOUBLE", "FLOAT":
		if f, ok := toFloat(v); ok {
			return groupDigits(strconv.FormatFloat(f, 'f', 2, 64))
		}
	case "INT", "BIGINT", "LONG":
		// Parse integers exactly; going through float64 would lose precision
		// above 2^53. Float-shaped inputs are the only ones converted.
		if n, ok := toInt(v); ok {
			return groupDigits(strconv.FormatInt(n, 10))
		}
		if f, ok := toFloat(v); ok {
			return groupDigits(strconv.FormatInt(int64(f), 10))
		}
	}

	return fmt.Sprintf("%v", v)
}

// toInt converts integer-shaped scalars without passing through float64.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// toFloat accepts the scalar shapes the statement API produces: JSON numbers
// decode as float64, everything else arrives as a string.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// groupDigits inserts comma thousands separators into the integer part of a
// formatted number, leaving any sign and fractional part intact.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}
