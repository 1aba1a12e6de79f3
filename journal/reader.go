package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/errs"
)

// Replay yields Records from path in file order (the order in which they
// were appended). Blank lines are skipped. A record that fails to parse
// is handled one of two ways:
//
//   - if it is the last non-blank line in the file, it is treated as a
//     torn tail write (the process crashed mid-Append): log a loud
//     warning and stop, returning the records seen so far with a nil
//     error, per the write-ahead contract ("crash before Append returns
//     ⇒ not-yet-observed").
//   - otherwise, it is MALFORMED_JOURNAL: replay fails immediately,
//     per spec.md §6/§7 ("FAIL LOUDLY on malformed lines", "never
//     silently skip").
func Replay(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewMalformedJournal(path, 0, err)
	}
	defer f.Close()

	lines, err := readNonBlankLines(f)
	if err != nil {
		return nil, errs.NewMalformedJournal(path, 0, err)
	}

	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		var rec Record
		if err := json.Unmarshal(line.bytes, &rec); err != nil {
			if i == len(lines)-1 {
				log.WithFields(log.Fields{
					"path": path,
					"line": line.number,
				}).Warn("journal: torn tail record skipped")
				return records, nil
			}
			return nil, errs.NewMalformedJournal(path, line.number, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type rawLine struct {
	number int
	bytes  []byte
}

func readNonBlankLines(r io.Reader) ([]rawLine, error) {
	var out []rawLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		cp := make([]byte, len(text))
		copy(cp, text)
		out = append(out, rawLine{number: lineNo, bytes: cp})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
