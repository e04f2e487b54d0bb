package harvest

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bilgisen/paperharvest/internal/logger"
	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/rs/zerolog"
)

// Source is the archive API.
type Source interface {
	Pages(ctx context.Context, editionID int, date string) ([]models.Page, error)
	Stories(ctx context.Context, pageID models.ID) ([]models.Story, error)
	StoryDetail(ctx context.Context, storyID models.ID) (models.StoryDetail, error)
}

// Sink persists harvested articles.
type Sink interface {
	// WriteDay writes the articles of a single date.
	WriteDay(ctx context.Context, date string, articles []models.Article) error
	// WriteConsolidated rewrites the files holding every article so far.
	WriteConsolidated(ctx context.Context, articles []models.Article) error
}

// Recorder receives run progress. Recorder errors never stop a run.
type Recorder interface {
	RecordDay(ctx context.Context, day DayReport) error
	RecordRun(ctx context.Context, run Report) error
}

// State is what a run carries from one day to the next.
type State struct {
	Articles []models.Article
}

// Options configures a Harvester. Zero fields take the defaults.
type Options struct {
	Editions []int
	Pacer    Pacer
	Recorder Recorder
	Logger   *zerolog.Logger
}

// DefaultEditions returns the edition ids 1 through 225.
func DefaultEditions() []int {
	ids := make([]int, 0, 225)
	for id := 1; id <= 225; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Harvester walks dates, editions, pages and stories one request at a time.
type Harvester struct {
	source   Source
	sink     Sink
	editions []int
	pacer    Pacer
	recorder Recorder
	log      zerolog.Logger
}

func New(source Source, sink Sink, opts Options) *Harvester {
	h := &Harvester{
		source:   source,
		sink:     sink,
		editions: opts.Editions,
		pacer:    opts.Pacer,
		recorder: opts.Recorder,
	}
	if len(h.editions) == 0 {
		h.editions = DefaultEditions()
	}
	if h.pacer == nil {
		h.pacer = FixedDelay(2 * time.Second)
	}
	if opts.Logger != nil {
		h.log = opts.Logger.With().Str("component", "harvester").Logger()
	} else {
		h.log = logger.Component("harvester")
	}
	return h
}

// Run harvests every date in order and returns the grown state. Each date with
// at least one article is written out before the next date starts. A
// cancelled context stops the run between requests; the date in progress is
// then dropped and ctx.Err() returned with the state as of the last written
// date. Storage errors abort the run.
func (h *Harvester) Run(ctx context.Context, dates []time.Time, state State) (State, Report, error) {
	state.Articles = slices.Clip(state.Articles)
	report := Report{StartedAt: time.Now()}

	finish := func(err error) (State, Report, error) {
		report.FinishedAt = time.Now()
		report.TotalArticles = len(state.Articles)
		report.Cancelled = ctx.Err() != nil
		h.record(func(c context.Context) error { return h.recorder.RecordRun(c, report) })
		return state, report, err
	}

	for i, d := range dates {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		date := FormatDate(d)
		h.log.Info().
			Str("date", date).
			Int("day", i+1).
			Int("days", len(dates)).
			Msg("Processing date")

		articles, day := h.HarvestDay(ctx, date)
		if err := ctx.Err(); err != nil {
			h.log.Warn().Str("date", date).Msg("Run cancelled, dropping unfinished date")
			return finish(err)
		}

		report.addDay(day)
		h.record(func(c context.Context) error { return h.recorder.RecordDay(c, day) })

		if len(articles) == 0 {
			h.log.Info().
				Str("date", date).
				Int("failures", day.Failures).
				Msg("No articles for date")
			continue
		}

		state.Articles = append(state.Articles, articles...)

		if err := h.sink.WriteDay(ctx, date, articles); err != nil {
			return finish(fmt.Errorf("failed to write articles for %s: %w", date, err))
		}
		if err := h.sink.WriteConsolidated(ctx, state.Articles); err != nil {
			return finish(fmt.Errorf("failed to write consolidated articles after %s: %w", date, err))
		}

		h.log.Info().
			Str("date", date).
			Int("articles", len(articles)).
			Int("total_articles", len(state.Articles)).
			Int("failures", day.Failures).
			Msg("Saved date")
	}

	return finish(nil)
}

// HarvestDay runs every configured edition for one date.
func (h *Harvester) HarvestDay(ctx context.Context, date string) ([]models.Article, DayReport) {
	day := DayReport{Date: date}
	var articles []models.Article

	for _, editionID := range h.editions {
		if ctx.Err() != nil {
			break
		}

		found, edition := h.ProcessEdition(ctx, editionID, date)
		day.Editions++
		if edition.Failures > 0 {
			day.FailedEditions++
		}
		day.Counts.add(edition.Counts)
		articles = append(articles, found...)
	}

	return articles, day
}

// ProcessEdition collects the non-empty stories of one edition on one date, in
// page order and then story order.
func (h *Harvester) ProcessEdition(ctx context.Context, editionID int, date string) ([]models.Article, EditionReport) {
	report := EditionReport{EditionID: editionID, Date: date}
	var articles []models.Article

	pages := h.fetchPages(ctx, editionID, date)
	report.observe(pages.Outcome)

	for _, page := range pages.Value {
		if page.PageID.IsZero() {
			report.SkippedPages++
			continue
		}

		stories := h.fetchStories(ctx, page.PageID)
		report.observe(stories.Outcome)

		for _, story := range stories.Value {
			if story.StoryID.IsZero() {
				report.SkippedStories++
				continue
			}

			detail := h.fetchStoryDetail(ctx, story.StoryID)
			report.observe(detail.Outcome)
			if detail.Value.IsEmpty() {
				report.EmptyDetails++
				continue
			}

			articles = append(articles, models.Article{
				Date:      date,
				EditionID: editionID,
				PageID:    page.PageID,
				StoryID:   story.StoryID,
				Content:   detail.Value,
			})
		}

		if ctx.Err() != nil {
			break
		}
	}

	report.Articles = len(articles)
	if report.Failures > 0 || report.Articles > 0 {
		h.log.Debug().
			Int("edition", editionID).
			Str("date", date).
			Int("articles", report.Articles).
			Int("failures", report.Failures).
			Msg("Processed edition")
	}
	return articles, report
}

func (h *Harvester) fetchPages(ctx context.Context, editionID int, date string) Result[[]models.Page] {
	pages, err := h.source.Pages(ctx, editionID, date)
	if err != nil {
		h.log.Error().
			Err(err).
			Int("edition", editionID).
			Str("date", date).
			Msg("Error fetching pages")
		return Result[[]models.Page]{Outcome: OutcomeFailed, Err: err}
	}
	if len(pages) == 0 {
		return Result[[]models.Page]{Outcome: OutcomeEmpty}
	}
	return Result[[]models.Page]{Value: pages, Outcome: OutcomeOK}
}

func (h *Harvester) fetchStories(ctx context.Context, pageID models.ID) Result[[]models.Story] {
	if err := h.pacer.Wait(ctx); err != nil {
		return Result[[]models.Story]{Outcome: OutcomeFailed, Err: err}
	}

	stories, err := h.source.Stories(ctx, pageID)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("page", pageID.String()).
			Msg("Error fetching stories")
		return Result[[]models.Story]{Outcome: OutcomeFailed, Err: err}
	}
	if len(stories) == 0 {
		return Result[[]models.Story]{Outcome: OutcomeEmpty}
	}
	return Result[[]models.Story]{Value: stories, Outcome: OutcomeOK}
}

func (h *Harvester) fetchStoryDetail(ctx context.Context, storyID models.ID) Result[models.StoryDetail] {
	if err := h.pacer.Wait(ctx); err != nil {
		return Result[models.StoryDetail]{Outcome: OutcomeFailed, Err: err}
	}

	detail, err := h.source.StoryDetail(ctx, storyID)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("story", storyID.String()).
			Msg("Error fetching story")
		return Result[models.StoryDetail]{Outcome: OutcomeFailed, Err: err}
	}
	if detail.IsEmpty() {
		return Result[models.StoryDetail]{Value: detail, Outcome: OutcomeEmpty}
	}
	return Result[models.StoryDetail]{Value: detail, Outcome: OutcomeOK}
}

// record hands a report to the recorder, if any. It runs on a short deadline
// of its own so a slow recorder cannot hold up the harvest.
func (h *Harvester) record(fn func(ctx context.Context) error) {
	if h.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Failed to record run status")
	}
}
