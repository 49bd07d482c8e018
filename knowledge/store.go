package knowledge

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
	"github.com/samber/lo"
)

type (
	// Store serves an up-to-date knowledge base while minimizing reloads of
	// a potentially slow or remote source.
	Store interface {
		// Get returns a snapshot of the knowledge base, loading it when the
		// cache window expired or the source file changed. A missing source
		// yields an empty base, not an error; a broken header yields an
		// ErrSchema-classified error.
		Get(ctx context.Context) (Base, error)

		// Refresh discards the cache unconditionally and reloads.
		Refresh(ctx context.Context) (Base, error)

		// Stats reports row and category counts for the current base.
		Stats(ctx context.Context) (*Stats, error)

		// AppendEntry adds a row to the persisted local store and
		// invalidates the cache so the next Get observes it.
		AppendEntry(ctx context.Context, question, answer, category string) error

		// LogUnanswered records a query nothing matched. Best effort: write
		// failures are logged, never returned.
		LogUnanswered(ctx context.Context, query, userID, username string)
	}

	// CSVStore is the Store implementation over a local CSV file with an
	// optional remote URL taking precedence.
	CSVStore struct {
		mu         sync.RWMutex
		conf       *config.KnowledgeConfig
		logger     *slog.Logger
		httpClient *http.Client
		unanswered *UnansweredLog
		cache      *cacheState

		loads atomic.Int64
	}

	cacheState struct {
		data             Base
		loadedAt         time.Time
		sourceModifiedAt *time.Time
		remote           bool
	}
)

var (
	_ Store = (*CSVStore)(nil)
)

const remoteFetchTimeout = 30 * time.Second

func NewCSVStore(conf *config.KnowledgeConfig, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		conf:   conf,
		logger: logger,
		httpClient: &http.Client{
			Timeout: remoteFetchTimeout,
		},
		unanswered: NewUnansweredLog(conf.UnansweredPath, logger),
	}
}

// Loads reports how many times the source was actually read. Exposed for
// cache behavior tests.
func (s *CSVStore) Loads() int64 {
	return s.loads.Load()
}

func (s *CSVStore) Get(ctx context.Context) (Base, error) {
	if s.conf.RemoteURL != "" {
		if base, ok := s.cachedRemote(); ok {
			s.logger.Debug("using cached remote knowledge base")
			return base, nil
		}

		base, err := s.loadRemote(ctx)
		if err == nil {
			return base, nil
		}
		// A broken schema on the primary source is the one remote failure
		// that propagates; transport and decode trouble falls back.
		if errors.Is(err, errors.ErrSchema) || s.conf.CSVPath == "" {
			return nil, err
		}
		s.logger.Warn("remote knowledge base load failed, falling back to local file",
			"url", s.conf.RemoteURL,
			"error", err)
	}

	if base, ok := s.cachedLocal(); ok {
		s.logger.Debug("using cached knowledge base data")
		return base, nil
	}

	return s.loadLocal(ctx)
}

func (s *CSVStore) Refresh(ctx context.Context) (Base, error) {
	s.logger.Info("forcing knowledge base cache refresh")

	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()

	return s.Get(ctx)
}

func (s *CSVStore) Stats(ctx context.Context) (*Stats, error) {
	base, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalQuestions: len(base),
	}

	s.mu.RLock()
	if s.cache != nil {
		loadedAt := s.cache.loadedAt
		stats.LastLoaded = &loadedAt
	}
	s.mu.RUnlock()

	if len(base) == 0 {
		return stats, nil
	}

	stats.ByCategory = lo.CountValuesBy(base, func(e Entry) string {
		return e.Category
	})
	stats.Categories = len(stats.ByCategory)

	return stats, nil
}

func (s *CSVStore) AppendEntry(ctx context.Context, question, answer, category string) error {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return errors.Wrap(errors.ErrInvalidParams, "question and answer are required")
	}
	if category = strings.TrimSpace(category); category == "" {
		category = DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	header, err := s.localHeader()
	if err != nil {
		return err
	}

	if err := ensureParentDir(s.conf.CSVPath); err != nil {
		return errors.Wrapf(err, "failed to create knowledge base directory")
	}

	f, err := os.OpenFile(s.conf.CSVPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open knowledge base for append: %s", s.conf.CSVPath)
	}
	defer f.Close()

	// A last row without a line terminator would swallow the appended
	// record into itself.
	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat knowledge base: %s", s.conf.CSVPath)
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return errors.Wrapf(err, "failed to read knowledge base tail: %s", s.conf.CSVPath)
		}
		if last[0] != '\n' {
			if _, err := f.WriteString("\n"); err != nil {
				return errors.Wrapf(err, "failed to terminate knowledge base row")
			}
		}
	}

	writer := csv.NewWriter(f)
	if header == nil {
		header = []string{columnCategory, columnQuestion, columnAnswer, columnPriority, columnLastUpdated}
		if err := writer.Write(header); err != nil {
			return errors.Wrapf(err, "failed to write knowledge base header")
		}
	}

	values := map[string]string{
		columnCategory:    category,
		columnQuestion:    question,
		columnAnswer:      answer,
		columnPriority:    "5",
		columnLastUpdated: time.Now().Format(time.RFC3339),
	}
	record := make([]string, len(header))
	for i, name := range header {
		record[i] = values[strings.TrimSpace(name)]
	}

	if err := writer.Write(record); err != nil {
		return errors.Wrapf(err, "failed to append knowledge base entry")
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "failed to flush knowledge base entry")
	}

	// The next Get must observe the new row.
	s.cache = nil

	s.logger.Info("appended knowledge base entry", "question", question, "category", category)
	return nil
}

func (s *CSVStore) LogUnanswered(ctx context.Context, query, userID, username string) {
	if err := s.unanswered.Record(ctx, query, userID, username); err != nil {
		s.logger.Error("failed to record unanswered question", "error", err)
	}
}

// localHeader reads the header row of the local file, nil when the file is
// absent or empty. Caller holds the write lock.
func (s *CSVStore) localHeader() ([]string, error) {
	f, err := os.Open(s.conf.CSVPath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to open knowledge base: %s", s.conf.CSVPath)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read knowledge base header: %s", s.conf.CSVPath)
	}
	if len(header) > 0 {
		// Same BOM handling as the load path, or the append record map
		// would key the first column as "\ufeffCategory".
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	return header, nil
}

func (s *CSVStore) cacheWindow() time.Duration {
	return time.Duration(s.conf.CacheDuration) * time.Minute
}

// cachedRemote checks remote cache validity: elapsed time only, since no
// modification check is possible for a remote resource.
func (s *CSVStore) cachedRemote() (Base, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil || !s.cache.remote {
		return nil, false
	}
	if time.Since(s.cache.loadedAt) >= s.cacheWindow() {
		return nil, false
	}
	return s.cache.data.Clone(), true
}

// cachedLocal checks local cache validity: a cached table exists, the file
// was not modified after the load, and the cache window has not elapsed.
func (s *CSVStore) cachedLocal() (Base, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil || s.cache.remote {
		return nil, false
	}

	info, err := os.Stat(s.conf.CSVPath)
	if err != nil {
		return nil, false
	}
	if s.cache.sourceModifiedAt != nil && info.ModTime().After(*s.cache.sourceModifiedAt) {
		return nil, false
	}
	if time.Since(s.cache.loadedAt) >= s.cacheWindow() {
		return nil, false
	}

	return s.cache.data.Clone(), true
}

func (s *CSVStore) loadLocal(ctx context.Context) (Base, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("loading knowledge base", "path", s.conf.CSVPath)
	s.loads.Add(1)

	info, err := os.Stat(s.conf.CSVPath)
	if err != nil {
		// Temporarily unavailable, not fatal: callers get an empty base.
		s.logger.Error("knowledge base file not found",
			"path", s.conf.CSVPath,
			"error", errors.Wrap(errors.ErrSourceUnavailable, err.Error()))
		return Base{}, nil
	}

	raw, err := os.ReadFile(s.conf.CSVPath)
	if err != nil {
		s.logger.Error("knowledge base file not readable",
			"path", s.conf.CSVPath,
			"error", errors.Wrap(errors.ErrSourceUnavailable, err.Error()))
		return Base{}, nil
	}

	text, encodingName := decodeTable(raw)
	if encodingName != "utf-8" {
		s.logger.Info("decoded knowledge base with fallback encoding", "encoding", encodingName)
	}

	base, err := parseTable(strings.NewReader(text), s.logger)
	if err != nil {
		return nil, err
	}

	modifiedAt := info.ModTime()
	s.cache = &cacheState{
		data:             base,
		loadedAt:         time.Now(),
		sourceModifiedAt: &modifiedAt,
	}

	s.logger.Info("successfully loaded knowledge base", "records", len(base))
	return base.Clone(), nil
}

func (s *CSVStore) loadRemote(ctx context.Context) (Base, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("loading knowledge base", "url", s.conf.RemoteURL)
	s.loads.Add(1)
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.conf.RemoteURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build knowledge base request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "remote fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "remote fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "remote read failed: %v", err)
	}

	text, encodingName := decodeTable(raw)
	if encodingName != "utf-8" {
		s.logger.Info("decoded remote knowledge base with fallback encoding", "encoding", encodingName)
	}

	base, err := parseTable(strings.NewReader(text), s.logger)
	if err != nil {
		return nil, err
	}

	s.cache = &cacheState{
		data:     base,
		loadedAt: time.Now(),
		remote:   true,
	}

	s.logger.Info("successfully loaded remote knowledge base",
		"records", len(base),
		"duration", time.Since(startTime))
	return base.Clone(), nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
