package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/utils"
)

var (
	// ErrNotFound is returned when a named preset does not exist.
	ErrNotFound = errors.New("preset not found")
	// ErrExists is returned by Save when a preset exists and overwrite is off.
	ErrExists = errors.New("preset already exists")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Preset is a saved filter and ordering for the score command.
type Preset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Categories []string  `json:"categories,omitempty"`
	Cities     []string  `json:"cities,omitempty"`
	Sort       string    `json:"sort,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Filter returns the preset's category and city filter.
func (p *Preset) Filter() filter.Filter {
	return filter.Filter{Categories: p.Categories, Cities: p.Cities}
}

// Validate checks the name, sort key and limit.
func (p *Preset) Validate() error {
	if !validName.MatchString(p.Name) {
		return fmt.Errorf("invalid preset name %q: use letters, digits, '.', '_' or '-'", p.Name)
	}
	if p.Sort != "" {
		if _, err := filter.ParseSortKey(p.Sort); err != nil {
			return err
		}
	}
	if p.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", p.Limit)
	}
	return nil
}

// Store keeps one JSON file per preset in a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name+".json") }

// Save persists p. An existing preset with the same name is replaced only when
// overwrite is set; its ID and creation time are kept.
func (s *Store) Save(p *Preset, overwrite bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	existing, err := s.Load(p.Name)
	switch {
	case err == nil && !overwrite:
		return fmt.Errorf("%w: %s", ErrExists, p.Name)
	case err == nil:
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	default:
		return err
	}
	p.UpdatedAt = now

	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path(p.Name), data)
}

// Load reads a preset by name.
func (s *Store) Load(name string) (*Preset, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	b, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var p Preset
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", name, err)
	}
	return &p, nil
}

// List returns all presets sorted by name. A missing directory yields none.
func (s *Store) List() ([]*Preset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read presets dir: %w", err)
	}
	var out []*Preset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a preset by name.
func (s *Store) Delete(name string) error {
	if _, err := s.Load(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return nil
}
