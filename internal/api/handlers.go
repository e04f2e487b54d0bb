package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/paperharvest/internal/logger"
	"github.com/bilgisen/paperharvest/internal/middleware"
	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/bilgisen/paperharvest/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Store is the read side of the harvest output directory.
type Store interface {
	ListDays(ctx context.Context, page, pageSize int) ([]storage.DayFile, int, error)
	ReadDay(ctx context.Context, key string) ([]models.Article, error)
	ReadAll(ctx context.Context) ([]models.Article, error)
}

// ListDaysQuery holds the pagination parameters of GET /days.
type ListDaysQuery struct {
	Page     int `query:"page" validate:"gte=1"`
	PageSize int `query:"page_size" validate:"gte=1,lte=100"`
}

func newListDaysQuery() *ListDaysQuery {
	return &ListDaysQuery{Page: 1, PageSize: 20}
}

type Handlers struct {
	store     Store
	validator *middleware.Validator
}

func NewHandlers(store Store) *Handlers {
	return &Handlers{
		store:     store,
		validator: middleware.NewValidator(),
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListDays handles GET /api/v1/days
func (h *Handlers) ListDays(c *fiber.Ctx) error {
	q := c.Locals(middleware.QueryKey).(*ListDaysQuery)

	days, total, err := h.store.ListDays(c.UserContext(), q.Page, q.PageSize)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing days")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list days",
		})
	}

	return c.JSON(fiber.Map{
		"page":      q.Page,
		"page_size": q.PageSize,
		"total":     total,
		"items":     days,
	})
}

// GetDay handles GET /api/v1/days/:date where date is DD_MM_YYYY
func (h *Handlers) GetDay(c *fiber.Ctx) error {
	key := c.Params("date")
	if err := h.validator.Var(key, "required,daykey"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must be DD_MM_YYYY",
		})
	}

	articles, err := h.store.ReadDay(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No articles for date",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("date", key).Msg("Error reading day")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read day",
		})
	}

	return c.JSON(fiber.Map{
		"date":  strings.ReplaceAll(key, "_", "/"),
		"total": len(articles),
		"items": articles,
	})
}

// GetArticles handles GET /api/v1/articles
func (h *Handlers) GetArticles(c *fiber.Ctx) error {
	articles, err := h.store.ReadAll(c.UserContext())
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No articles harvested yet",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error reading consolidated articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read articles",
		})
	}

	return c.JSON(fiber.Map{
		"total": len(articles),
		"items": articles,
	})
}
