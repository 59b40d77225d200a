package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// recognizeTSV runs tesseract in TSV mode and reassembles the text from
// word rows, discarding words whose confidence falls below MinConfidence.
// TSV rows carry level/page/block/par/line/word coordinates; line breaks are
// reconstructed from the (block, par, line) triple.
func (e *Engine) recognizeTSV(ctx context.Context, path string) (string, error) {
	args := append(e.baseArgs(path), "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 512))
	}

	var b strings.Builder
	prevLine := ""
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		word := cols[len(cols)-1]
		confStr := cols[len(cols)-2]
		if strings.TrimSpace(word) == "" {
			continue
		}
		conf, perr := strconv.ParseFloat(confStr, 64)
		if perr != nil || conf < 0 {
			continue // -1 marks structural rows without recognized text
		}
		if float32(conf/100.0) < e.cfg.MinConfidence {
			continue
		}

		// cols 2..4 are block, paragraph, line numbers.
		lineKey := strings.Join(cols[2:5], ":")
		if b.Len() > 0 {
			if lineKey != prevLine {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		prevLine = lineKey
		b.WriteString(word)
	}
	return b.String(), nil
}
