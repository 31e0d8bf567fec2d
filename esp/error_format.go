package esp

import (
	"fmt"
	"strconv"
	"strings"
)

func formatCodeFrame(lineNo int, lineText string, column int) string {
	if lineNo <= 0 {
		return ""
	}

	lineRunes := []rune(lineText)
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(lineNo)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		lineNo,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
	)
}

// runeColumn converts a byte offset in line into a 1-based rune column.
func runeColumn(line string, offset int) int {
	if offset < 0 {
		return 1
	}
	if offset > len(line) {
		offset = len(line)
	}
	return len([]rune(line[:offset])) + 1
}
