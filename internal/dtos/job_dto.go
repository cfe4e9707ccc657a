package dtos

// JobExtractionRequest carries a pasted job posting, usually raw HTML.
type JobExtractionRequest struct {
	RawHTML string `json:"rawHtml" validate:"required,max=200000"`
	URL     string `json:"url" validate:"omitempty,http_url"`
}

type JobExtractionResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
