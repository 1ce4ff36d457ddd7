package models

// RubricAnalysisResult holds the free-form rubric review returned by the service.
type RubricAnalysisResult struct {
	Improvements string `json:"improvements"`
	Advice       string `json:"advice"`
	FullResponse string `json:"full_response,omitempty"`
}
