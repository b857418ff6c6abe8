package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Draft is a rating comment whose submission has not been confirmed yet.
// It stays on disk until the rating goes through.
type Draft struct {
	Stars     int       `yaml:"stars"`
	Comment   string    `yaml:"comment"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type draftFile struct {
	Drafts map[string]Draft `yaml:"drafts"`
}

var draftsMutex sync.Mutex

func GetDraftsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "drafts.yaml"), nil
}

func readDrafts() (*draftFile, string, error) {
	path, err := GetDraftsPath()
	if err != nil {
		return nil, "", err
	}

	state := &draftFile{Drafts: map[string]Draft{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return state, path, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read drafts: %w", err)
	}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, "", fmt.Errorf("failed to parse drafts: %w", err)
	}
	if state.Drafts == nil {
		state.Drafts = map[string]Draft{}
	}
	return state, path, nil
}

func writeDrafts(path string, state *draftFile) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal drafts: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write drafts: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save drafts: %w", err)
	}
	return nil
}

// LoadDraft returns the pending draft for a professor, if any.
func LoadDraft(professorID int) (Draft, bool, error) {
	draftsMutex.Lock()
	defer draftsMutex.Unlock()

	state, _, err := readDrafts()
	if err != nil {
		return Draft{}, false, err
	}
	d, ok := state.Drafts[strconv.Itoa(professorID)]
	return d, ok, nil
}

func SaveDraft(professorID, stars int, comment string) error {
	draftsMutex.Lock()
	defer draftsMutex.Unlock()

	state, path, err := readDrafts()
	if err != nil {
		return err
	}
	state.Drafts[strconv.Itoa(professorID)] = Draft{Stars: stars, Comment: comment, UpdatedAt: time.Now()}
	return writeDrafts(path, state)
}

// ClearDraft drops the draft once its rating was accepted.
func ClearDraft(professorID int) error {
	draftsMutex.Lock()
	defer draftsMutex.Unlock()

	state, path, err := readDrafts()
	if err != nil {
		return err
	}
	key := strconv.Itoa(professorID)
	if _, ok := state.Drafts[key]; !ok {
		return nil
	}
	delete(state.Drafts, key)
	return writeDrafts(path, state)
}
