package parser

import "strings"

// detectAction walks the action table in order and returns the action of the
// first trigger found as a substring of the message. Default is "add".
func detectAction(message string) string {
	for _, a := range actionTable {
		for _, trigger := range a.triggers {
			if strings.Contains(message, trigger) {
				return a.name
			}
		}
	}
	return ActionAdd
}

// detectCategory counts trigger hits per category and picks the strictly
// highest score. All-zero falls back to DefaultCategory; a non-zero tie keeps
// the category that appears first in the table.
func detectCategory(message string) string {
	best := DefaultCategory
	bestScore := 0

	for _, c := range categoryTable {
		score := 0
		for _, trigger := range c.triggers {
			if strings.Contains(message, trigger) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = c.name
		}
	}
	return best
}
