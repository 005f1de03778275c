package actor

import (
	"context"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

const (
	errIDEmpty    = "actor ID cannot be empty"
	errTokenEmpty = "token ID cannot be empty"
)

// Roster is the YAML document actors are loaded from
type Roster struct {
	Actors []*entities.Actor `yaml:"actors"`
}

// DecodeRoster reads a roster document
func DecodeRoster(r io.Reader) (*Roster, error) {
	var roster Roster
	if err := yaml.NewDecoder(r).Decode(&roster); err != nil {
		if err == io.EOF {
			return &Roster{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode roster")
	}
	return &roster, nil
}

// Config holds the configuration for the roster repository
type Config struct {
	// Actors seed the repository
	Actors []*entities.Actor

	// Path, when set, receives the whole roster after every hp change
	Path string
}

// Validate ensures actor ids and tokens are present and unique
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	ids := make(map[string]bool, len(c.Actors))
	tokens := make(map[string]bool, len(c.Actors))
	for i, a := range c.Actors {
		switch {
		case a == nil:
			vb.Fieldf("Actors", "entry %d is nil", i)
		case a.ID == "":
			vb.Fieldf("Actors", "entry %d has no id", i)
		case ids[a.ID]:
			vb.Fieldf("Actors", "duplicate id %s", a.ID)
		case a.TokenID != "" && tokens[a.TokenID]:
			vb.Fieldf("Actors", "duplicate token %s", a.TokenID)
		default:
			ids[a.ID] = true
			if a.TokenID != "" {
				tokens[a.TokenID] = true
			}
		}
	}
	return vb.Build()
}

type rosterRepository struct {
	mu     sync.RWMutex
	actors []*entities.Actor
	byID   map[string]*entities.Actor
	path   string
}

// NewRosterRepository creates an in-memory actor repository
func NewRosterRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	r := &rosterRepository{
		byID: make(map[string]*entities.Actor, len(cfg.Actors)),
		path: cfg.Path,
	}
	for _, a := range cfg.Actors {
		c := a.Clone()
		r.actors = append(r.actors, c)
		r.byID[c.ID] = c
	}
	return r, nil
}

// LoadRosterFile opens a YAML roster and keeps it in sync on hp changes
func LoadRosterFile(path string) (Repository, error) {
	f, err := os.Open(path) // #nosec G304 -- roster path comes from operator config
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open roster %s", path)
	}
	defer func() { _ = f.Close() }()

	roster, err := DecodeRoster(f)
	if err != nil {
		return nil, err
	}
	return NewRosterRepository(&Config{Actors: roster.Actors, Path: path})
}

var _ Repository = (*rosterRepository)(nil)

// Get retrieves an actor by id
func (r *rosterRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[input.ID]
	if !ok {
		return nil, errors.NotFoundf("actor %s not found", input.ID)
	}
	return &GetOutput{Actor: a.Clone()}, nil
}

// GetByToken resolves the actor behind an on-scene token
func (r *rosterRepository) GetByToken(_ context.Context, input GetByTokenInput) (*GetByTokenOutput, error) {
	if input.TokenID == "" {
		return nil, errors.InvalidArgument(errTokenEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.actors {
		if a.TokenID == input.TokenID {
			return &GetByTokenOutput{Actor: a.Clone()}, nil
		}
	}
	return nil, errors.NotFoundf("no actor for token %s", input.TokenID)
}

// List returns actors in roster order
func (r *rosterRepository) List(_ context.Context, input ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &ListOutput{}
	for _, a := range r.actors {
		if input.Kind == "" || a.Kind == input.Kind {
			out.Actors = append(out.Actors, a.Clone())
		}
	}
	return out, nil
}

// UpdateHP sets current hit points and writes the roster back when file backed
func (r *rosterRepository) UpdateHP(_ context.Context, input UpdateHPInput) (*UpdateHPOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[input.ID]
	if !ok {
		return nil, errors.NotFoundf("actor %s not found", input.ID)
	}

	previous := a.HP.Value
	a.HP.Value = input.Value
	if err := r.persist(); err != nil {
		a.HP.Value = previous
		return nil, err
	}
	return &UpdateHPOutput{Actor: a.Clone()}, nil
}

// UpdateMaxHP sets maximum hit points and writes the roster back when file
// backed. Max must be positive.
func (r *rosterRepository) UpdateMaxHP(_ context.Context, input UpdateMaxHPInput) (*UpdateMaxHPOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}
	if input.Max <= 0 {
		return nil, errors.InvalidArgumentf("max hp must be positive, got %d", input.Max)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[input.ID]
	if !ok {
		return nil, errors.NotFoundf("actor %s not found", input.ID)
	}

	previous := a.HP.Max
	a.HP.Max = input.Max
	if err := r.persist(); err != nil {
		a.HP.Max = previous
		return nil, err
	}
	return &UpdateMaxHPOutput{Actor: a.Clone()}, nil
}

// persist must be called with the write lock held
func (r *rosterRepository) persist() error {
	if r.path == "" {
		return nil
	}

	data, err := yaml.Marshal(&Roster{Actors: r.actors})
	if err != nil {
		return errors.Wrap(err, "failed to encode roster")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write roster %s", r.path)
	}
	return nil
}
