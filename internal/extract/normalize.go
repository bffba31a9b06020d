package extract

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
	// Year-like tokens with common OCR confusions (2O21, 20l9)
	ocrYear = regexp.MustCompile(`\b[12][0-9Ol]{3}\b`)
	// Open-ended date ranges ("2019 - present", "2021 to Current")
	presentRange = regexp.MustCompile(`(?i)(\d{4}\s*(?:[-–]|to)\s*)(present|current|now)\b`)
)

// Normalize cleans extracted text before it is measured and summarized.
// Runs of horizontal whitespace collapse to a single space, excess blank
// lines collapse to one, OCR digit confusions in year tokens are repaired,
// and "present"/"current" date words are canonicalized.
func Normalize(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")

	text = ocrYear.ReplaceAllStringFunc(text, func(year string) string {
		year = strings.ReplaceAll(year, "O", "0")
		year = strings.ReplaceAll(year, "l", "1")
		return year
	})

	text = presentRange.ReplaceAllString(text, "${1}Present")

	return strings.TrimSpace(text)
}
