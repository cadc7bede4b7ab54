package script

import "time"

// ActivityResponse represents the output from the script activity
type ActivityResponse struct {
	Language string        `json:"language"`
	Duration time.Duration `json:"duration"`
}
