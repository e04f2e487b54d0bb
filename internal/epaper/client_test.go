package epaper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:     srv.URL,
		UserAgent:   "harvest-test",
		InsecureTLS: true,
	})
}

func TestPagesSendsEditionAndDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PagesPath, r.URL.Path)
		assert.Equal(t, "17", r.URL.Query().Get("editionid"))
		assert.Equal(t, "05/03/2024", r.URL.Query().Get("editiondate"))
		assert.Equal(t, "harvest-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"PageId":101},{"PageId":0},{"PageNo":3}]`))
	})

	pages, err := client.Pages(context.Background(), 17, "05/03/2024")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "101", pages[0].PageID.String())
	assert.True(t, pages[1].PageID.IsZero())
	assert.True(t, pages[2].PageID.IsZero())
}

func TestStoriesAndDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case StoriesPath:
			assert.Equal(t, "101", r.URL.Query().Get("pageid"))
			_, _ = w.Write([]byte(`[{"storyid":9001}]`))
		case StoryDetailPath:
			assert.Equal(t, "9001", r.URL.Query().Get("Storyid"))
			_, _ = w.Write([]byte(`{"StoryContent":[{"Body":"hello"}],"Title":"t"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	stories, err := client.Stories(ctx, models.NumericID(101))
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "9001", stories[0].StoryID.String())

	detail, err := client.StoryDetail(ctx, stories[0].StoryID)
	require.NoError(t, err)
	assert.False(t, detail.IsEmpty())
	assert.Equal(t, "hello", detail.Body())
	assert.Equal(t, []string{"StoryContent", "Title"}, detail.Keys())
}

func TestBadIDDoesNotDropSiblings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PagesPath:
			_, _ = w.Write([]byte(`[{"PageId":5},{"PageId":false},{"pageid":6}]`))
		case StoriesPath:
			_, _ = w.Write([]byte(`[{"storyid":[]},{"storyid":42},{"StoryId":43}]`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	pages, err := client.Pages(ctx, 1, "01/01/2024")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "5", pages[0].PageID.String())
	assert.True(t, pages[1].PageID.IsZero())
	assert.True(t, pages[2].PageID.IsZero())

	stories, err := client.Stories(ctx, pages[0].PageID)
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.True(t, stories[0].StoryID.IsZero())
	assert.Equal(t, "42", stories[1].StoryID.String())
	assert.True(t, stories[2].StoryID.IsZero())
}

func TestNullBodyIsEmptyNotFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	pages, err := client.Pages(context.Background(), 1, "01/01/2024")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestFailuresWrapErrFetchFailed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>maintenance</html>`))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "detail is not an object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[1,2,3]`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrNotObject)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.StoryDetail(context.Background(), models.NumericID(1))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetchFailed)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestTLSVerificationWhenNotInsecure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.Pages(context.Background(), 1, "01/01/2024")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Stories(ctx, models.NumericID(5))
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
