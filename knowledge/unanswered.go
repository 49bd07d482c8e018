package knowledge

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/habiliai/answerdesk/errors"
)

// minUnansweredTokens filters noise out of the curation log: one- and
// two-word fragments are almost never curatable questions.
const minUnansweredTokens = 3

type UnansweredLog struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewUnansweredLog(path string, logger *slog.Logger) *UnansweredLog {
	return &UnansweredLog{
		path:   path,
		logger: logger,
	}
}

// Record appends one quoted record per qualifying query: timestamp, user
// identifier, username, raw query text. Queries with fewer than three
// tokens are ignored.
func (l *UnansweredLog) Record(ctx context.Context, query, userID, username string) error {
	if len(strings.Fields(query)) < minUnansweredTokens {
		l.logger.Debug("skipping unanswered record, query too short", "query", query)
		return nil
	}
	if username = strings.TrimSpace(username); username == "" {
		username = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ensureParentDir(l.path); err != nil {
		return errors.Wrapf(err, "failed to create unanswered log directory")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open unanswered log: %s", l.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat unanswered log: %s", l.path)
	}

	var sb strings.Builder
	if info.Size() == 0 {
		sb.WriteString(quotedRecord("Timestamp", "User ID", "Username", "Question"))
	}
	sb.WriteString(quotedRecord(time.Now().Format(time.RFC3339), userID, username, query))

	if _, err := f.WriteString(sb.String()); err != nil {
		return errors.Wrapf(err, "failed to append unanswered record")
	}

	l.logger.Info("recorded unanswered question", "user", username, "query", query)
	return nil
}

// quotedRecord formats one CSV line with every field quoted, matching the
// upload script on the curation side.
func quotedRecord(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}
