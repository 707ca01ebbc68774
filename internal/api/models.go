package api

import "time"

// User is a dashboard account. Role is "admin" or "user".
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// UserInput is the payload for creating or updating a user.
type UserInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Quote is a generated or curated quote.
type Quote struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// QuoteInput is the payload for creating or updating a quote.
type QuoteInput struct {
	Text     string `json:"text,omitempty"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
}

// Post is a social post draft or scheduled publication.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Status      string     `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
}

// PostInput is the payload for creating or updating a post.
type PostInput struct {
	Title       string     `json:"title,omitempty"`
	Content     string     `json:"content,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Status      string     `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// Template is a reusable content template.
type Template struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Content     string    `json:"content,omitempty"`
	PreviewURL  string    `json:"previewUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// TemplateInput is the payload for creating or updating a template.
type TemplateInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Content     string `json:"content,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
}

// Image is a generated image asset.
type Image struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ImageInput is the payload for requesting image generation.
type ImageInput struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	ID        int64     `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ChatRequest asks the assistant to generate content. Mode selects the
// generator: "quote", "caption", or "image".
type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode,omitempty"`
}

// loginRequest is the POST /api/auth/login payload.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// csrfTokenData is the data payload of GET /api/auth/csrf-token.
type csrfTokenData struct {
	CSRFToken string `json:"csrfToken"`
}
