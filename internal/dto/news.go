package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
)

type NewsDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	ImageURL    string    `json:"imageUrl"`
	PublishedAt string    `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewsRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	Author      string `json:"author" validate:"max=100"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	PublishedAt string `json:"publishedAt" validate:"omitempty,ddmmyyyy"`
}

// ChatTurn is one earlier exchange with the news assistant.
type ChatTurn struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

type NewsChatRequest struct {
	Message string     `json:"message" validate:"required"`
	History []ChatTurn `json:"history" validate:"dive"`
}

type NewsChatResponse struct {
	Reply string `json:"reply"`
}

func MapNews(n *domain.News) NewsDTO {
	return NewsDTO{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Author:      n.Author,
		ImageURL:    n.ImageURL,
		PublishedAt: n.PublishedAt,
		CreatedAt:   n.CreatedAt,
	}
}
