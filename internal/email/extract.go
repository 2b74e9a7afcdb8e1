// Package email polls an IMAP inbox for receipt emails and logs the
// extracted purchases as receipts.
package email

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

var (
	reAmount   = regexp.MustCompile(`[$€£]\s*([\d,]+\.?\d{0,2})`)
	reTotal    = regexp.MustCompile(`(?i)total[:\s]*[$€£]?\s*([\d,]+\.?\d{0,2})`)
	reMerchant = regexp.MustCompile(`(?i)(?:from|at|merchant)[:\s]*([A-Za-z0-9\s&]+)`)
	reDate     = regexp.MustCompile(`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
	reDateSep  = regexp.MustCompile(`[/\-.]`)

	reGrocery  = regexp.MustCompile(`(?i)grocery|supermarket|walmart|target|costco|loblaws|sobeys`)
	rePharmacy = regexp.MustCompile(`(?i)pharmacy|shoppers|rexall|drug`)
	reDining   = regexp.MustCompile(`(?i)restaurant|cafe|coffee|mcdonalds|starbucks|tim hortons`)
	reGas      = regexp.MustCompile(`(?i)\bgas\b|petro|shell|esso|ultramar`)

	receiptKeywords = []string{"receipt", "purchase", "order", "payment", "invoice"}
)

// ExtractAmount pulls a monetary amount out of receipt text. A line labelled
// "total" wins over the first bare currency amount. Returns 0, false when
// nothing parseable is found.
func ExtractAmount(text string) (float64, bool) {
	if m := reTotal.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	if m := reAmount.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	return 0, false
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ExtractDate finds the first M/D/Y-style date in the text and normalizes it
// to YYYY-MM-DD. Falls back to today when no date is present.
func ExtractDate(text string, now time.Time) string {
	if m := reDate.FindStringSubmatch(text); m != nil {
		parts := reDateSep.Split(m[1], -1)
		if len(parts) == 3 {
			year := parts[2]
			if len(year) == 2 {
				year = "20" + year
			}
			month, _ := strconv.Atoi(parts[0])
			day, _ := strconv.Atoi(parts[1])
			if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				return fmt.Sprintf("%s-%02d-%02d", year, month, day)
			}
		}
	}
	return now.Format("2006-01-02")
}

// ExtractMerchant looks for a "from ..."/"at ..." phrase, subject first, then
// body. Falls back to the subject line itself, truncated.
func ExtractMerchant(subject, body string) string {
	for _, source := range []string{subject, body} {
		if m := reMerchant.FindStringSubmatch(source); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	line, _, _ := strings.Cut(subject, "\n")
	if len(line) > 50 {
		line = line[:50]
	}
	return line
}

// GuessCategory buckets a receipt by merchant keywords.
func GuessCategory(text string) string {
	switch {
	case reGrocery.MatchString(text):
		return "Groceries"
	case reDining.MatchString(text):
		return "Dining Out"
	case reGas.MatchString(text):
		return "Gas/Transport"
	case rePharmacy.MatchString(text):
		return "Health"
	default:
		return "Other"
	}
}

// LooksLikeReceipt filters fetched messages down to plausible receipts by
// subject keyword or sender address.
func LooksLikeReceipt(subject, from string) bool {
	subject = strings.ToLower(subject)
	from = strings.ToLower(from)
	for _, kw := range receiptKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return strings.Contains(from, "receipt") || strings.Contains(from, "no-reply") || strings.Contains(from, "noreply")
}

// StripHTML reduces an HTML email body to its visible text.
func StripHTML(src string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(src))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// PDFText extracts the plain text of a PDF attachment. Scanned or image-only
// PDFs yield an empty string.
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
