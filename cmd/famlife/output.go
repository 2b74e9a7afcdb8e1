package main

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// markLine prefixes msg with a status mark and wraps the line in color,
// unless --no-color is set.
func markLine(color, mark, msg string) string {
	if noColor {
		return mark + " " + msg
	}
	return color + mark + " " + msg + colorReset
}

// Status lines go to stderr so piped command output stays clean.
func printMarked(color, mark, format string, args ...any) {
	fmt.Fprintln(os.Stderr, markLine(color, mark, fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printMarked(colorGreen, "✓", format, args...) }

func printError(format string, args ...any) { printMarked(colorRed, "✗", format, args...) }

func printWarning(format string, args ...any) { printMarked(colorYellow, "⚠", format, args...) }

func printStep(format string, args ...any) { printMarked(colorCyan, "→", format, args...) }
