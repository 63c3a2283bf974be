// ABOUTME: Tests for the shared scalar formatting rules
// ABOUTME: Covers the numeric type tags, null handling, and fallback paths

package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue_Double(t *testing.T) {
	assert.Equal(t, "1,234,567.50", FormatValue(1234567.5, "DOUBLE"))
	assert.Equal(t, "1,234,567.50", FormatValue("1234567.5", "DOUBLE"))
	assert.Equal(t, "0.25", FormatValue(0.25, "DECIMAL"))
	assert.Equal(t, "-1,000.00", FormatValue(-1000.0, "FLOAT"))
}

func TestFormatValue_Integer(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatValue(float64(1234567), "BIGINT"))
	assert.Equal(t, "1,234,567", FormatValue("1234567", "LONG"))
	assert.Equal(t, "42", FormatValue("42", "INT"))
	assert.Equal(t, "-9,000", FormatValue(float64(-9000), "BIGINT"))
}

func TestFormatValue_LargeIntegersExact(t *testing.T) {
	// Values above 2^53 are not representable in float64; string-form cells
	// must render digit-for-digit.
	assert.Equal(t, "9,007,199,254,740,993", FormatValue("9007199254740993", "BIGINT"))
	assert.Equal(t, "-9,223,372,036,854,775,808", FormatValue("-9223372036854775808", "LONG"))
	assert.Equal(t, "9,007,199,254,740,993", FormatValue(int64(9007199254740993), "BIGINT"))
}

func TestFormatValue_Null(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil, "DOUBLE"))
	assert.Equal(t, "NULL", FormatValue(nil, "STRING"))
	assert.Equal(t, "NULL", FormatValue(nil, ""))
}

func TestFormatValue_StringTypes(t *testing.T) {
	assert.Equal(t, "hello", FormatValue("hello", "STRING"))
	assert.Equal(t, "2024-01-01", FormatValue("2024-01-01", "DATE"))
}

func TestFormatValue_UnparsableNumberFallsBack(t *testing.T) {
	// A cell whose claimed type doesn't match its content must render as its
	// string form rather than failing.
	assert.Equal(t, "not-a-number", FormatValue("not-a-number", "DOUBLE"))
	assert.Equal(t, "n/a", FormatValue("n/a", "BIGINT"))
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "0", groupDigits("0"))
	assert.Equal(t, "999", groupDigits("999"))
	assert.Equal(t, "1,000", groupDigits("1000"))
	assert.Equal(t, "12,345,678.90", groupDigits("12345678.90"))
	assert.Equal(t, "-1,234", groupDigits("-1234"))
}
