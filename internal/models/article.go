package models

import "time"

// Article статья автора. Content хранится в markdown, HTML получается при выдаче.
type Article struct {
	ID         int64     `json:"id"`
	WriterUID  string    `json:"writer_uid"`
	WriterName string    `json:"writer_name"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	HTML       string    `json:"html,omitempty"`
	Excerpt    string    `json:"excerpt,omitempty"`
	IsPremium  bool      `json:"is_premium"`
	DatePosted time.Time `json:"date_posted"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticleInput данные статьи из запроса автора.
type ArticleInput struct {
	Title     string `json:"title" validate:"required,min=3,max=255"`
	Content   string `json:"content" validate:"required"`
	IsPremium bool   `json:"is_premium"`
}

// ArticleFeed результат просмотра статей читателем.
type ArticleFeed struct {
	HasSubscription  bool       `json:"has_subscription"`
	SubscriptionPlan string     `json:"subscription_plan"`
	Articles         []*Article `json:"articles"`
}
