package parser

import "strings"

// extractTitle derives a human-readable title from the raw (not lowercased)
// message: the first matching leading action phrase is stripped, then
// temporal phrases are removed everywhere. Prefix stripping runs before
// temporal removal.
func extractTitle(message string) string {
	title := message
	for _, prefix := range titlePrefixes {
		if prefix.MatchString(title) {
			title = prefix.ReplaceAllString(title, "")
			break
		}
	}

	for _, temporal := range titleTemporal {
		title = temporal.ReplaceAllString(title, "")
	}

	return strings.TrimSpace(title)
}

// splitGroceryItems breaks a grocery title into individual item strings:
// a leading add/buy/get/need verb is dropped, the remainder splits on commas
// and the word "and", and a trailing destination phrase ("to groceries") is
// stripped from each piece. Empty pieces are discarded.
func splitGroceryItems(title string) []string {
	text := reGroceryVerb.ReplaceAllString(title, "")

	var items []string
	for _, piece := range reItemSep.Split(text, -1) {
		piece = reItemDest.ReplaceAllString(piece, "")
		piece = strings.TrimSpace(piece)
		if piece != "" {
			items = append(items, piece)
		}
	}
	return items
}
