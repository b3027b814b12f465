package dto

type PlaybackStatusResponse struct {
	Turn         int     `json:"turn" example:"2"`
	Played       int     `json:"played" example:"14"`
	State        string  `json:"state" example:"playing"`
	CursorSec    float64 `json:"cursor_seconds" example:"1.25"`
	QueueLength  int     `json:"queue_length" example:"3"`
	Playing      bool    `json:"playing"`
	Interrupted  bool    `json:"interrupted"`
	SinkAttached bool    `json:"sink_attached"`
}

type InterruptResponse struct {
	Discarded int `json:"discarded" example:"5"`
}

type ClearResponse struct {
	Turn int `json:"turn" example:"3"`
}
