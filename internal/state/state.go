package state

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"anchorpatch/internal/fs"
)

const (
	stateDirName  = ".anchorpatch"
	stateFileName = "state"
	blobDirName   = "blobs"
)

// Snapshot records one patched file: its pre-patch and post-patch
// content hashes, both resolvable to full content through the blob dir.
type Snapshot struct {
	Path     string
	PreHash  string
	PostHash string
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp int64
	Snapshots []Snapshot
}

// State represents the entire state file.
type State struct {
	History      []HistoryEntry
	CurrentIndex int
}

// Manager handles the lifecycle of the state file and the blob store.
type Manager struct {
	statePath string
	blobDir   string
	state     *State
}

// findGitRoot finds the root of the git repository.
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// New creates a state manager rooted at the git toplevel, falling back
// to the working directory outside a repository.
func New() (*Manager, error) {
	rootDir, err := findGitRoot()
	if err != nil {
		rootDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
	}
	return NewAt(rootDir)
}

// NewAt creates and loads a state manager rooted at an explicit directory.
func NewAt(rootDir string) (*Manager, error) {
	stateDir := filepath.Join(rootDir, stateDirName)
	blobDir := filepath.Join(stateDir, blobDirName)
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		blobDir:   blobDir,
	}
	if err := m.load(); err != nil {
		m.state = &State{CurrentIndex: -1}
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &State{CurrentIndex: -1}
			return nil
		}
		return err
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")
	if len(blocks) == 0 || strings.TrimSpace(blocks[0]) == "" {
		m.state = &State{CurrentIndex: -1}
		return nil
	}

	index, err := strconv.Atoi(strings.TrimSpace(blocks[0]))
	if err != nil {
		return fmt.Errorf("invalid state file: could not parse current index: %w", err)
	}
	m.state = &State{CurrentIndex: index}

	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		ts, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid state file: could not parse timestamp from '%s': %w", lines[0], err)
		}
		entry := HistoryEntry{Timestamp: ts}

		snapLines := lines[1:]
		if len(snapLines)%3 != 0 {
			return fmt.Errorf("invalid state file: incomplete snapshot record")
		}
		for i := 0; i < len(snapLines); i += 3 {
			entry.Snapshots = append(entry.Snapshots, Snapshot{
				Path:     snapLines[i],
				PreHash:  snapLines[i+1],
				PostHash: snapLines[i+2],
			})
		}
		m.state.History = append(m.state.History, entry)
	}
	return nil
}

func (m *Manager) save() error {
	blocks := []string{fmt.Sprintf("%d", m.state.CurrentIndex)}

	for _, entry := range m.state.History {
		lines := []string{fmt.Sprintf("%d", entry.Timestamp)}
		for _, s := range entry.Snapshots {
			lines = append(lines, s.Path, s.PreHash, s.PostHash)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	content := strings.Join(blocks, "\n\n")
	if err := os.WriteFile(m.statePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	return nil
}

// SaveBlob stores content in the blob dir keyed by its hash. Storing the
// same content twice is a no-op.
func (m *Manager) SaveBlob(content string) (string, error) {
	hash := fs.ContentSHA256(content)
	path := filepath.Join(m.blobDir, hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("could not store snapshot blob: %w", err)
	}
	return hash, nil
}

// LoadBlob retrieves content previously stored with SaveBlob.
func (m *Manager) LoadBlob(hash string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.blobDir, hash))
	if err != nil {
		return "", fmt.Errorf("could not load snapshot blob %s: %w", hash, err)
	}
	return string(data), nil
}

// Record adds a new run to the history, discarding any redo tail.
func (m *Manager) Record(snapshots []Snapshot) error {
	if m.state.CurrentIndex < len(m.state.History)-1 {
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}
	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp: time.Now().UTC().Unix(),
		Snapshots: snapshots,
	})
	m.state.CurrentIndex++
	return m.save()
}

// SnapshotsToUndo gets the last run's snapshots and moves the history pointer.
func (m *Manager) SnapshotsToUndo() []Snapshot {
	if m.state.CurrentIndex < 0 {
		return nil
	}
	snaps := m.state.History[m.state.CurrentIndex].Snapshots
	m.state.CurrentIndex--
	m.save()
	return snaps
}

// SnapshotsToRedo gets the next run's snapshots and moves the history pointer.
func (m *Manager) SnapshotsToRedo() []Snapshot {
	nextIndex := m.state.CurrentIndex + 1
	if nextIndex >= len(m.state.History) {
		return nil
	}
	m.state.CurrentIndex = nextIndex
	snaps := m.state.History[m.state.CurrentIndex].Snapshots
	m.save()
	return snaps
}
