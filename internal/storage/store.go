package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/raster"
)

const (
	FirstFrameFile = "first_frame.png"
	FinalFrameFile = "final_frame.png"
	FinalSVGFile   = "final_frame.svg"
	PromptFile     = "prompt.txt"
	VideoFile      = "ground_truth.gif"
	MetadataFile   = "metadata.json"
	TrajectoryFile = "trajectory.csv"
)

var ErrNotFound = errors.New("storage: sample not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(id string) string { return filepath.Join(s.baseDir, id) }

// Metadata is written next to every sample as metadata.json.
type Metadata struct {
	ID          string              `json:"task_id"`
	Domain      string              `json:"domain"`
	Summary     string              `json:"summary,omitempty"`
	RunID       string              `json:"run_id,omitempty"`
	Seed        int64               `json:"seed"`
	Timestamp   time.Time           `json:"timestamp"`
	Weights     dynamo.WeightConfig `json:"weights"`
	Outcome     dynamo.Outcome      `json:"outcome"`
	Frames      int                 `json:"frames"`
	Easing      string              `json:"easing"`
	TargetAngle float64             `json:"target_angle"` // radians
	TargetDeg   float64             `json:"target_angle_deg"`
	Geometry    dynamo.Geometry     `json:"geometry"`
	Files       []string            `json:"files"`
}

// Sample is everything produced for one task.
type Sample struct {
	Meta       Metadata
	Trajectory *dynamo.Trajectory
	Prompt     string
	First      image.Image
	Final      image.Image
	FinalSVG   string // optional
	Video      []byte // encoded GIF, optional
}

// Save writes a sample into its own directory and returns that directory.
// Files are staged in a hidden sibling directory that is renamed over any
// previous sample with the same id; a failed save leaves the old one intact.
func (s *Store) Save(sample *Sample) (string, error) {
	if sample.Meta.ID == "" {
		return "", fmt.Errorf("storage: sample has no id")
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	tmp, err := os.MkdirTemp(s.baseDir, "."+sample.Meta.ID+"-")
	if err != nil {
		return "", err
	}
	if err := writeSample(tmp, sample); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}
	if err := os.Chmod(tmp, 0755); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}

	dir := s.Dir(sample.Meta.ID)
	if err := os.RemoveAll(dir); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}
	return dir, nil
}

func writeSample(dir string, sample *Sample) error {
	meta := sample.Meta

	if err := writePNG(filepath.Join(dir, FirstFrameFile), sample.First); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(dir, FinalFrameFile), sample.Final); err != nil {
		return err
	}
	files := []string{FirstFrameFile, FinalFrameFile}

	if sample.FinalSVG != "" {
		if err := os.WriteFile(filepath.Join(dir, FinalSVGFile), []byte(sample.FinalSVG), 0644); err != nil {
			return err
		}
		files = append(files, FinalSVGFile)
	}

	if err := os.WriteFile(filepath.Join(dir, PromptFile), []byte(sample.Prompt+"\n"), 0644); err != nil {
		return err
	}
	files = append(files, PromptFile)

	if len(sample.Video) > 0 {
		if err := os.WriteFile(filepath.Join(dir, VideoFile), sample.Video, 0644); err != nil {
			return err
		}
		files = append(files, VideoFile)
	}

	if err := writeTrajectory(filepath.Join(dir, TrajectoryFile), sample.Trajectory); err != nil {
		return err
	}
	files = append(files, TrajectoryFile, MetadataFile)

	meta.Files = files
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	return writeJSON(filepath.Join(dir, MetadataFile), meta)
}

func writePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("storage: missing image for %s", filepath.Base(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := raster.EncodePNG(f, img); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

var trajectoryHeader = []string{
	"frame", "progress", "angle_rad",
	"left_end_x", "left_end_y", "right_end_x", "right_end_y",
	"left_pan_x", "left_pan_y", "right_pan_x", "right_pan_y",
	"terminal",
}

func writeTrajectory(path string, traj *dynamo.Trajectory) error {
	if traj == nil {
		return fmt.Errorf("storage: missing trajectory")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, st := range traj.States {
		row := []string{
			strconv.Itoa(st.Frame), ff(st.Progress), ff(st.Angle),
			ff(st.LeftEnd.X), ff(st.LeftEnd.Y), ff(st.RightEnd.X), ff(st.RightEnd.Y),
			ff(st.LeftPan.X), ff(st.LeftPan.Y), ff(st.RightPan.X), ff(st.RightPan.Y),
			strconv.FormatBool(st.Terminal),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every sample under the base directory,
// ordered by id.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	samples := make([]Metadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		samples = append(samples, *meta)
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return samples, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(id), MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) LoadPrompt(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(id), PromptFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", err
	}
	return string(data), nil
}

// LoadTrajectory rebuilds a sample's trajectory from its CSV and metadata.
func (s *Store) LoadTrajectory(id string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.Dir(id), TrajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: %s: empty trajectory", id)
	}

	traj := &dynamo.Trajectory{
		Geometry:    meta.Geometry,
		Outcome:     meta.Outcome,
		TargetAngle: meta.TargetAngle,
		States:      make([]dynamo.TiltState, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		st, err := parseState(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", id, i+1, err)
		}
		traj.States = append(traj.States, st)
	}
	return traj, nil
}

func parseState(rec []string) (dynamo.TiltState, error) {
	var st dynamo.TiltState
	frame, err := strconv.Atoi(rec[0])
	if err != nil {
		return st, err
	}
	vals := make([]float64, 10)
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return st, err
		}
	}
	terminal, err := strconv.ParseBool(rec[11])
	if err != nil {
		return st, err
	}

	return dynamo.TiltState{
		Frame:    frame,
		Progress: vals[0],
		Angle:    vals[1],
		LeftEnd:  dynamo.Vec2{X: vals[2], Y: vals[3]},
		RightEnd: dynamo.Vec2{X: vals[4], Y: vals[5]},
		LeftPan:  dynamo.Vec2{X: vals[6], Y: vals[7]},
		RightPan: dynamo.Vec2{X: vals[8], Y: vals[9]},
		Terminal: terminal,
	}, nil
}
