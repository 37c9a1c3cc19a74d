package domain

type Banner struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	ImageURL  string `json:"imageUrl"`
	LinkURL   string `json:"linkUrl,omitempty"`
	IsActive  bool   `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}
