package dtos

// ApplicationCreateRequest saves a job application for the signed-in user.
// Description has no hard cap; it is truncated before it is stored.
type ApplicationCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Company     string   `json:"company" validate:"required,min=1,max=200"`
	URL         string   `json:"url" validate:"omitempty,max=2048,http_url"`
	Description string   `json:"description" validate:"required,min=1"`
	Status      string   `json:"status" validate:"omitempty,oneof=SAVED APPLIED INTERVIEWING OFFERED REJECTED WITHDRAWN"`
	MatchScore  *float64 `json:"matchScore" validate:"omitempty,gte=0,lte=100"`
	Skills      []string `json:"skills" validate:"omitempty,max=100,dive,max=100"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SAVED APPLIED INTERVIEWING OFFERED REJECTED WITHDRAWN"`
}

type ApplicationStats struct {
	Total             int `json:"total"`
	AverageMatchScore int `json:"averageMatchScore"`
	Interviewing      int `json:"interviewing"`
}
