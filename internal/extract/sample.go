package extract

import "strings"

// Omission markers inserted between head and tail sets when sampling trims
// an oversized document. Chosen to be distinguishable from real content by
// downstream consumers.
const (
	pdfOmissionMarker  = "... (intermediate pages content omitted) ..."
	docxOmissionMarker = "... (intermediate paragraph content omitted) ..."
	rowOmissionMarker  = "... (intermediate rows omitted) ..."
)

// sampleUnits retains all units when the count is at or below threshold,
// otherwise the first keep and last keep units with marker between them.
// Empty units are dropped from the retained sets, but the threshold applies
// to the full unit count of the document.
func sampleUnits(units []string, threshold, keep int, marker string) []string {
	if len(units) <= threshold {
		return dropEmpty(units)
	}
	out := dropEmpty(units[:keep])
	out = append(out, marker)
	return append(out, dropEmpty(units[len(units)-keep:])...)
}

// sampleByBudget retains lines from the head and tail until each side has
// consumed half of the character budget, with marker between the sets.
// Lines are never split; a line that would overflow its half stops that side.
func sampleByBudget(lines []string, budget int, marker string) []string {
	half := budget / 2

	var head []string
	count := 0
	for _, line := range lines {
		if count+len(line) > half {
			break
		}
		head = append(head, line)
		count += len(line)
	}

	var tail []string
	count = 0
	for i := len(lines) - 1; i >= 0; i-- {
		if count+len(lines[i]) > half {
			break
		}
		tail = append([]string{lines[i]}, tail...)
		count += len(lines[i])
	}

	out := append(head, marker)
	return append(out, tail...)
}

func dropEmpty(units []string) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	return out
}

// trimmedLen is the replacement-policy measure: OCR output is accepted only
// when its trimmed length strictly exceeds the native text's. A cheap proxy
// for "OCR recovered more signal", not a fidelity guarantee.
func trimmedLen(s string) int {
	return len(strings.TrimSpace(s))
}
