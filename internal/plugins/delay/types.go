package delay

import "time"

// ActivityResponse reports how long the virtual user actually paused
type ActivityResponse struct {
	Slept time.Duration `json:"slept"`
}
