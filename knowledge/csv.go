package knowledge

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/habiliai/answerdesk/errors"
	"github.com/habiliai/answerdesk/internal/stringutils"
	"golang.org/x/text/encoding/charmap"
)

const (
	columnCategory    = "Category"
	columnQuestion    = "Question"
	columnAnswer      = "Answer"
	columnPriority    = "Priority"
	columnLastUpdated = "Last Updated"
)

var requiredColumns = []string{columnCategory, columnQuestion, columnAnswer}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lastUpdatedFormats is the accepted set for the best-effort timestamp
// column. Anything else becomes an absent timestamp, never a load failure.
var lastUpdatedFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

// decodeTable turns raw knowledge base bytes into text using an ordered
// fallback chain. The final attempt is lossy and always succeeds; remote
// sources are imperfect and a mangled cell beats a failed load.
func decodeTable(raw []byte) (text string, encodingName string) {
	if hasBOM := bytes.HasPrefix(raw, utf8BOM); !hasBOM && utf8.Valid(raw) {
		return string(raw), "utf-8"
	} else if hasBOM {
		rest := bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(rest) {
			return string(rest), "utf-8-sig"
		}
	}

	if decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), "windows-1251"
	}

	return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), "utf-8-replace"
}

// parseTable reads a CSV knowledge base. The header must carry the required
// columns; rows with a wrong field count or blank question/answer are
// dropped, not surfaced.
func parseTable(r io.Reader, logger *slog.Logger) (Base, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return Base{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read knowledge base header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, string(utf8BOM)))
		columns[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(errors.ErrSchema, "missing required columns: %s", strings.Join(missing, ", "))
	}

	base := Base{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			logger.Warn("skipping malformed knowledge base row", "line", line, "error", err)
			continue
		}

		entry, ok := cleanRow(record, columns)
		if !ok {
			logger.Debug("dropping knowledge base row without question or answer", "line", line)
			continue
		}
		base = append(base, entry)
	}

	return base, nil
}

func cleanRow(record []string, columns map[string]int) (Entry, bool) {
	field := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(stringutils.SanitizeUnicodeString(record[idx])), true
	}

	question, _ := field(columnQuestion)
	answer, _ := field(columnAnswer)
	if question == "" || answer == "" {
		return Entry{}, false
	}

	entry := Entry{
		Category: DefaultCategory,
		Question: question,
		Answer:   answer,
		Priority: DefaultPriority,
	}

	if category, ok := field(columnCategory); ok && category != "" {
		entry.Category = category
	}
	if priority, ok := field(columnPriority); ok {
		if n, err := strconv.Atoi(priority); err == nil {
			entry.Priority = n
		}
	}
	if lastUpdated, ok := field(columnLastUpdated); ok && lastUpdated != "" {
		for _, format := range lastUpdatedFormats {
			if ts, err := time.Parse(format, lastUpdated); err == nil {
				entry.LastUpdated = &ts
				break
			}
		}
	}

	return entry, true
}
