package dtos

type AnalyzeRequest struct {
	JobDescription string   `json:"jobDescription" validate:"required,min=1,max=50000"`
	UserSkills     []string `json:"userSkills" validate:"omitempty,max=100,dive,max=100"`
}

// AnalyzeResponse is the client view of an analysis: skill names only.
type AnalyzeResponse struct {
	Skills     []string `json:"skills"`
	MatchScore float64  `json:"matchScore"`
	Summary    string   `json:"summary"`
}

type CoverLetterRequest struct {
	JobTitle       string   `json:"jobTitle" validate:"required,min=1,max=500"`
	Company        string   `json:"company" validate:"required,min=1,max=500"`
	JobDescription string   `json:"jobDescription" validate:"required,min=1,max=50000"`
	UserSkills     []string `json:"userSkills" validate:"omitempty,max=100,dive,max=100"`
	// UserName overrides the display name from the session.
	UserName string `json:"userName" validate:"omitempty,max=200"`
}

type CoverLetterResponse struct {
	CoverLetter string `json:"coverLetter"`
}
