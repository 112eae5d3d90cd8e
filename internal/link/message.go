package link

import (
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// Command tags a message.
type Command string

const (
	CmdUpdateActive Command = "update_active"
	CmdStart        Command = "start"
	CmdStop         Command = "stop"
	CmdComplete     Command = "complete"
	CmdPause        Command = "pause"
	CmdMetrics      Command = "metrics"
)

// Message is the single wire envelope. Only the field matching the command
// is set.
type Message struct {
	Command Command        `json:"command"`
	Active  []model.Task   `json:"active,omitempty"`
	Params  *params.Start  `json:"params,omitempty"`
	Data    model.Snapshot `json:"data,omitempty"`
}

// MarshalJSON always writes the active list of update_active, as an empty
// array when no task is active.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	if m.Command != CmdUpdateActive {
		return json.Marshal(plain(m))
	}
	active := m.Active
	if active == nil {
		active = []model.Task{}
	}
	return json.Marshal(struct {
		Command Command      `json:"command"`
		Active  []model.Task `json:"active"`
	}{m.Command, active})
}

// UpdateActive announces the Observer's active task list.
func UpdateActive(active []model.Task) Message {
	return Message{Command: CmdUpdateActive, Active: active}
}

// Start carries the full parameter bundle of a new session.
func Start(p params.Start) Message {
	return Message{Command: CmdStart, Params: &p}
}

// Stop ends the session early.
func Stop() Message {
	return Message{Command: CmdStop}
}

// Complete ends the session when its time limit is reached.
func Complete() Message {
	return Message{Command: CmdComplete}
}

// Pause toggles the paused state.
func Pause() Message {
	return Message{Command: CmdPause}
}

// Metrics carries a full task snapshot.
func Metrics(s model.Snapshot) Message {
	return Message{Command: CmdMetrics, Data: s}
}

// Validate rejects unknown commands and missing payloads.
func (m Message) Validate() error {
	switch m.Command {
	case CmdUpdateActive, CmdStop, CmdComplete, CmdPause:
		return nil
	case CmdStart:
		if m.Params == nil {
			return fmt.Errorf("start without params")
		}
		return nil
	case CmdMetrics:
		if m.Data == nil {
			return fmt.Errorf("metrics without data")
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", m.Command)
	}
}
