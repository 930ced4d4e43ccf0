package model

type Status struct {
	RunningMode  string `json:"running_mode"`
	Traits       int    `json:"traits"`
	Implementors int    `json:"implementors"`
	LastPublish  string `json:"last_publish,omitempty"`
}
