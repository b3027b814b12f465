package transport

import "encoding/json"

type Action string

const (
	ActionPlayingProgress Action = "playing-progress"
	ActionFinishPlaying   Action = "finish-playing"
	ActionInterrupt       Action = "interrupt"
	ActionClear           Action = "clear"
)

// EndOfTurnSize is the payload length reserved for the end-of-turn marker.
const EndOfTurnSize = 3

type Header struct {
	Action Action `json:"action"`
	TaskID string `json:"taskId"`
}

type Payload struct {
	Parameters map[string]any `json:"parameters"`
	Input      map[string]any `json:"input"`
}

type ControlMessage struct {
	Header  Header  `json:"header"`
	Payload Payload `json:"payload"`
}

func NewAction(action Action, taskID string, input, parameters map[string]any) *ControlMessage {
	if input == nil {
		input = map[string]any{}
	}
	if parameters == nil {
		parameters = map[string]any{}
	}
	return &ControlMessage{
		Header: Header{
			Action: action,
			TaskID: taskID,
		},
		Payload: Payload{
			Parameters: parameters,
			Input:      input,
		},
	}
}

func ParseControlMessage(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Payload.Parameters == nil {
		msg.Payload.Parameters = map[string]any{}
	}
	if msg.Payload.Input == nil {
		msg.Payload.Input = map[string]any{}
	}
	return &msg, nil
}
