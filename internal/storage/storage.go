package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a requested output file does not exist.
var ErrNotFound = errors.New("not found")

var dayKeyPattern = regexp.MustCompile(`^\d{2}_\d{2}_\d{4}$`)

const (
	dayFilePrefix = "articles_"
	dayKeyLayout  = "02_01_2006"
)

// Mirror receives a copy of every file written.
type Mirror interface {
	Put(ctx context.Context, name string, data []byte) error
}

// DayFile describes one per-day output file.
type DayFile struct {
	Date      string    `json:"date"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage writes harvest output into a single directory and reads it back.
type Storage struct {
	basePath string
	months   int
	mirror   Mirror
	log      zerolog.Logger
	mu       sync.RWMutex
}

// NewStorage creates the output directory if needed. months only names the
// consolidated files. mirror may be nil.
func NewStorage(basePath string, months int, mirror Mirror, log zerolog.Logger) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
		months:   months,
		mirror:   mirror,
		log:      log.With().Str("component", "storage").Logger(),
	}, nil
}

// DayFileName is the per-day file name for a DD/MM/YYYY date.
func DayFileName(date string) string {
	return dayFilePrefix + models.DateKey(date) + ".json"
}

// ConsolidatedJSONName is the file holding every article as JSON.
func (s *Storage) ConsolidatedJSONName() string {
	return fmt.Sprintf("all_articles_%dmonths.json", s.months)
}

// ConsolidatedCSVName is the file holding every article as a flat table.
func (s *Storage) ConsolidatedCSVName() string {
	return fmt.Sprintf("all_articles_%dmonths.csv", s.months)
}

// WriteDay writes the articles harvested for one date.
func (s *Storage) WriteDay(ctx context.Context, date string, articles []models.Article) error {
	data, err := encodeJSON(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(ctx, DayFileName(date), data)
}

// WriteConsolidated rewrites the consolidated JSON and CSV files with every
// article given.
func (s *Storage) WriteConsolidated(ctx context.Context, articles []models.Article) error {
	table, err := flattenToCSV(articles)
	if err != nil {
		return fmt.Errorf("failed to flatten articles: %w", err)
	}
	data, err := encodeJSON(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFile(ctx, s.ConsolidatedCSVName(), table); err != nil {
		return err
	}
	return s.writeFile(ctx, s.ConsolidatedJSONName(), data)
}

// ListDays returns a page of per-day files, most recent date first.
func (s *Storage) ListDays(ctx context.Context, page, pageSize int) ([]DayFile, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading storage directory: %w", err)
	}

	type dated struct {
		file DayFile
		day  time.Time
	}
	var days []dated
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, dayFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, dayFilePrefix), ".json")
		day, err := time.Parse(dayKeyLayout, key)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, 0, fmt.Errorf("error reading %s: %w", name, err)
		}
		days = append(days, dated{
			file: DayFile{
				Date:      strings.ReplaceAll(key, "_", "/"),
				Key:       key,
				Size:      info.Size(),
				UpdatedAt: info.ModTime(),
			},
			day: day,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].day.After(days[j].day)
	})

	start := (page - 1) * pageSize
	if start >= len(days) {
		return []DayFile{}, len(days), nil
	}
	end := start + pageSize
	if end > len(days) {
		end = len(days)
	}

	files := make([]DayFile, 0, end-start)
	for _, d := range days[start:end] {
		files = append(files, d.file)
	}
	return files, len(days), nil
}

// ReadDay loads the articles of one date, given as DD_MM_YYYY.
func (s *Storage) ReadDay(ctx context.Context, key string) ([]models.Article, error) {
	if !dayKeyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid day key %q: %w", key, ErrNotFound)
	}
	return s.readArticles(ctx, dayFilePrefix+key+".json")
}

// ReadAll loads the consolidated article file.
func (s *Storage) ReadAll(ctx context.Context) ([]models.Article, error) {
	return s.readArticles(ctx, s.ConsolidatedJSONName())
}

func (s *Storage) readArticles(ctx context.Context, name string) ([]models.Article, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.basePath, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return articles, nil
}

// writeFile replaces name atomically, then hands the bytes to the mirror.
// Callers hold s.mu.
func (s *Storage) writeFile(ctx context.Context, name string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	tmp, err := os.CreateTemp(s.basePath, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.basePath, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, name, data); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("Failed to mirror output file")
		}
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flattenToCSV(articles []models.Article) ([]byte, error) {
	header, rows, err := Flatten(articles)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
