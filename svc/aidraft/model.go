package aidraft

// WorkExperience is one job entry. Dates are YYYY-MM-DD or empty.
type WorkExperience struct {
	Position    string `json:"position,omitempty" validate:"max=200"`
	Company     string `json:"company,omitempty" validate:"max=200"`
	StartDate   string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description,omitempty" validate:"max=4000"`
}

// Education is one education entry.
type Education struct {
	Degree    string `json:"degree,omitempty" validate:"max=200"`
	School    string `json:"school,omitempty" validate:"max=200"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// SummaryInput is the résumé data a summary is written from.
type SummaryInput struct {
	JobTitle       string           `json:"jobTitle,omitempty" validate:"max=200"`
	WorkExperience []WorkExperience `json:"workExperience,omitempty" validate:"max=30,dive"`
	Education      []Education      `json:"education,omitempty" validate:"max=30,dive"`
	Skills         []string         `json:"skills,omitempty" validate:"max=100"`
}

// WorkExperienceInput is a free-text description of a job.
type WorkExperienceInput struct {
	Description string `json:"description" validate:"required,min=20,max=2000"`
}
