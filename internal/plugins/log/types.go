package log

// LogActivityResponse is the message as it was written
type LogActivityResponse struct {
	LogMessage string `json:"log_message,omitempty"`
}
