package models

// VideoResponse represents the API response for a video.
type VideoResponse struct {
	ID          string                 `json:"id"`
	SourceID    string                 `json:"source_id"`
	ExternalID  string                 `json:"external_id"`
	Title       string                 `json:"title"`
	URL         string                 `json:"url"`
	Duration    *int                   `json:"duration,omitempty"`
	Status      Status                 `json:"status"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewVideoResponse creates a response from a video model
func NewVideoResponse(v *Video) *VideoResponse {
	return &VideoResponse{
		ID:         v.ID,
		SourceID:   v.SourceID,
		ExternalID: v.ExternalID,
		Title:      v.Title,
		URL:        v.URL,
		Duration:   v.Duration,
		Status:     v.Status,
		Metadata:   v.Metadata,
	}
}

// CreateVideoRequest is the payload for manual video registration.
type CreateVideoRequest struct {
	SourceID   string `json:"source_id"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url"`
}

// UpdateVideoRequest patches mutable video fields.
type UpdateVideoRequest struct {
	Title    *string `json:"title,omitempty"`
	Duration *int    `json:"duration,omitempty"`
}
