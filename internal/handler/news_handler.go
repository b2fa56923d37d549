package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
	"github.com/rs/zerolog/log"
)

type NewsHandler struct {
	newsRepo  *repository.NewsRepository
	assistant service.NewsAssistant
	changes   ChangeNotifier
}

// NewNewsHandler accepts a nil assistant; chat then answers 503.
func NewNewsHandler(newsRepo *repository.NewsRepository, assistant service.NewsAssistant, changes ChangeNotifier) *NewsHandler {
	return &NewsHandler{
		newsRepo:  newsRepo,
		assistant: assistant,
		changes:   notifierOrNoop(changes),
	}
}

func (h *NewsHandler) List(c *fiber.Ctx) error {
	news, err := h.newsRepo.List()
	if err != nil {
		return internalError(c, "Failed to fetch news")
	}

	result := make([]dto.NewsDTO, 0, len(news))
	for i := range news {
		result = append(result, dto.MapNews(&news[i]))
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

func (h *NewsHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	news, err := h.newsRepo.FindByID(id)
	if err != nil {
		return notFound(c, "News")
	}
	return c.JSON(dto.SuccessResponse(dto.MapNews(news), ""))
}

// Create publishes today when publishedAt is left empty.
func (h *NewsHandler) Create(c *fiber.Ctx) error {
	var req dto.NewsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	news := &domain.News{}
	applyNews(news, &req)
	if err := h.newsRepo.Create(news); err != nil {
		return internalError(c, "Failed to create news")
	}

	h.changes.NotifyChange("news", "created", &news.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapNews(news), "News created"))
}

func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	news, err := h.newsRepo.FindByID(id)
	if err != nil {
		return notFound(c, "News")
	}

	var req dto.NewsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	applyNews(news, &req)
	if err := h.newsRepo.Update(news); err != nil {
		return internalError(c, "Failed to update news")
	}

	h.changes.NotifyChange("news", "updated", &news.ID)
	return c.JSON(dto.SuccessResponse(dto.MapNews(news), "News updated"))
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	deleted, err := h.newsRepo.Delete(id)
	if err != nil {
		return internalError(c, "Failed to delete news")
	}
	if !deleted {
		return notFound(c, "News")
	}

	h.changes.NotifyChange("news", "deleted", &id)
	return c.JSON(dto.SuccessResponse(nil, "News deleted"))
}

// Chat handles POST /news/chat, a drafting assistant for news posts.
func (h *NewsHandler) Chat(c *fiber.Ctx) error {
	if h.assistant == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse("ASSISTANT_UNAVAILABLE", "News assistant is not configured"))
	}

	var req dto.NewsChatRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	reply, err := h.assistant.Reply(c.UserContext(), req.History, req.Message)
	if err != nil {
		log.Error().Err(err).Msg("news assistant")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse("ASSISTANT_FAILED", "News assistant did not answer"))
	}
	return c.JSON(dto.SuccessResponse(dto.NewsChatResponse{Reply: reply}, ""))
}

func applyNews(n *domain.News, req *dto.NewsRequest) {
	n.Title = req.Title
	n.Content = req.Content
	n.Author = req.Author
	n.ImageURL = req.ImageURL
	n.PublishedAt = req.PublishedAt
	if n.PublishedAt == "" {
		n.PublishedAt = domain.FormatDate(time.Now())
	}
}
