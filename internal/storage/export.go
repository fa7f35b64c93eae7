package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

type ExportData struct {
	Metadata
	Prompt string             `json:"prompt"`
	States []dynamo.TiltState `json:"states"`
}

// ExportJSON writes a stored sample's metadata, prompt and full trajectory
// as one JSON document.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	traj, err := s.LoadTrajectory(id)
	if err != nil {
		return err
	}
	prompt, err := s.LoadPrompt(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: *meta, Prompt: prompt, States: traj.States})
}
