package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bilgisen/paperharvest/internal/middleware"
	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/bilgisen/paperharvest/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type APISuite struct {
	suite.Suite

	store *storage.Storage
	app   *fiber.App
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	store, err := storage.NewStorage(s.T().TempDir(), 3, nil, zerolog.New(io.Discard))
	s.Require().NoError(err)
	s.store = store

	s.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(s.app, store)
}

func (s *APISuite) seed(dates ...string) []models.Article {
	ctx := context.Background()
	var all []models.Article
	for i, date := range dates {
		var detail models.StoryDetail
		s.Require().NoError(json.Unmarshal([]byte(`{"StoryContent":[{"Body":"story"}]}`), &detail))
		day := []models.Article{{
			Date:      date,
			EditionID: 1,
			PageID:    models.NumericID(int64(i + 1)),
			StoryID:   models.NumericID(int64(100 + i)),
			Content:   detail,
		}}
		s.Require().NoError(s.store.WriteDay(ctx, date, day))
		all = append(all, day...)
	}
	s.Require().NoError(s.store.WriteConsolidated(ctx, all))
	return all
}

func (s *APISuite) get(path string) (int, map[string]any) {
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (s *APISuite) TestHealth() {
	status, body := s.get("/api/v1/health")
	s.Equal(http.StatusOK, status)
	s.Equal("ok", body["status"])
}

func (s *APISuite) TestListDays() {
	s.seed("01/03/2024", "02/03/2024", "03/03/2024")

	status, body := s.get("/api/v1/days?page=1&page_size=2")
	s.Equal(http.StatusOK, status)
	s.Equal(float64(3), body["total"])

	items := body["items"].([]any)
	s.Require().Len(items, 2)
	s.Equal("03/03/2024", items[0].(map[string]any)["date"])
}

func (s *APISuite) TestListDaysDefaults() {
	s.seed("01/03/2024")

	status, body := s.get("/api/v1/days")
	s.Equal(http.StatusOK, status)
	s.Equal(float64(1), body["page"])
	s.Equal(float64(20), body["page_size"])
}

func (s *APISuite) TestListDaysRejectsBadPaging() {
	status, body := s.get("/api/v1/days?page_size=500")
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("lte", body["fields"].(map[string]any)["PageSize"])

	status, _ = s.get("/api/v1/days?page=0")
	s.Equal(http.StatusUnprocessableEntity, status)
}

func (s *APISuite) TestGetDay() {
	s.seed("01/03/2024", "02/03/2024")

	status, body := s.get("/api/v1/days/02_03_2024")
	s.Equal(http.StatusOK, status)
	s.Equal("02/03/2024", body["date"])
	s.Equal(float64(1), body["total"])

	status, _ = s.get("/api/v1/days/09_03_2024")
	s.Equal(http.StatusNotFound, status)

	status, _ = s.get("/api/v1/days/2024-03-02")
	s.Equal(http.StatusBadRequest, status)
}

func (s *APISuite) TestGetArticles() {
	status, _ := s.get("/api/v1/articles")
	s.Equal(http.StatusNotFound, status)

	s.seed("01/03/2024", "02/03/2024")

	status, body := s.get("/api/v1/articles")
	s.Equal(http.StatusOK, status)
	s.Equal(float64(2), body["total"])
	first := body["items"].([]any)[0].(map[string]any)
	s.Equal(float64(100), first["story_id"])
}

func (s *APISuite) TestUnknownRoute() {
	status, body := s.get("/nope")
	s.Equal(http.StatusNotFound, status)
	s.Equal("Endpoint not found", body["error"])
}

func TestValidatorDayKey(t *testing.T) {
	v := middleware.NewValidator()
	require.NoError(t, v.Var("31_12_2023", "daykey"))
	require.Error(t, v.Var("32_12_2023", "daykey"))
	require.Error(t, v.Var("31/12/2023", "daykey"))
}
