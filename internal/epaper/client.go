package epaper

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Archive endpoints, relative to the base URL.
const (
	PagesPath       = "/Home/GetAllpages"
	StoriesPath     = "/Home/getStoriesOnPage"
	StoryDetailPath = "/Home/getstorydetail"
)

// ErrFetchFailed marks every failed archive call: transport errors, HTTP error
// statuses and undecodable bodies alike.
var ErrFetchFailed = errors.New("fetch failed")

// StatusError is returned for HTTP responses with a 4xx or 5xx status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration // 0 leaves the transport default
	InsecureTLS bool
	Logger      *zerolog.Logger
}

// Client talks to the e-paper archive API.
type Client struct {
	client *resty.Client
}

func NewClient(opts Options) *Client {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.InsecureTLS {
		// The archive's certificate chain does not verify.
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.Logger != nil {
		client.SetLogger(restyLogger{log: opts.Logger.With().Str("component", "resty").Logger()})
	}

	return &Client{client: client}
}

// Pages lists the pages of one edition on one date (DD/MM/YYYY).
func (c *Client) Pages(ctx context.Context, editionID int, date string) ([]models.Page, error) {
	var pages []models.Page
	err := c.getJSON(ctx, PagesPath, map[string]string{
		"editionid":   strconv.Itoa(editionID),
		"editiondate": date,
	}, &pages)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Stories lists the stories placed on a page.
func (c *Client) Stories(ctx context.Context, pageID models.ID) ([]models.Story, error) {
	var stories []models.Story
	err := c.getJSON(ctx, StoriesPath, map[string]string{
		"pageid": pageID.String(),
	}, &stories)
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// StoryDetail fetches the full payload of a story.
func (c *Client) StoryDetail(ctx context.Context, storyID models.ID) (models.StoryDetail, error) {
	var detail models.StoryDetail
	err := c.getJSON(ctx, StoryDetailPath, map[string]string{
		"Storyid": storyID.String(),
	}, &detail)
	if err != nil {
		return models.StoryDetail{}, err
	}
	return detail, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrFetchFailed, path, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%w: %w", ErrFetchFailed, &StatusError{Code: resp.StatusCode(), URL: resp.Request.URL})
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return fmt.Errorf("%w: GET %s: empty response body", ErrFetchFailed, path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse %s response: %w", ErrFetchFailed, path, err)
	}
	return nil
}

// restyLogger routes resty's own diagnostics into zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
