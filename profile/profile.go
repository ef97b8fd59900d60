// Package profile implements the business profile store: a read-only
// mapping from an industry key to the persona, greeting, qualifying
// questions, and classification rulebook the relay uses for that industry.
// Profiles are loaded once at startup from a YAML document and never
// mutated afterwards, so lookups need no locking.
package profile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LeadNamePlaceholder is the token inside a greeting template that gets
// replaced with the lead's name.
const LeadNamePlaceholder = "{lead_name}"

// QualificationRules is the classification rulebook for an industry. Each
// field is a free-text description of the qualification criteria the model
// applies per turn.
type QualificationRules struct {
	Hot     string `yaml:"hot" validate:"required"`
	Cold    string `yaml:"cold" validate:"required"`
	Invalid string `yaml:"invalid" validate:"required"`
}

// BusinessProfile describes one industry's agent persona and qualification
// setup. Immutable after load.
type BusinessProfile struct {
	AgentName           string             `yaml:"agent_name" validate:"required"`
	IndustryName        string             `yaml:"industry_name" validate:"required"`
	InitialGreeting     string             `yaml:"initial_greeting" validate:"required"`
	QualifyingQuestions []string           `yaml:"qualifying_questions" validate:"required,min=1,dive,required"`
	QualificationRules  QualificationRules `yaml:"qualification_rules"`
}

// Store holds the industry key → profile mapping. Construct it with Load or
// LoadFile; the zero value is an empty store.
type Store struct {
	profiles map[string]*BusinessProfile
}

var validate = validator.New()

// LoadFile loads the profile document from a YAML file. Any error here is
// fatal: the process must not start without a valid profile store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a profile document from an io.Reader and validates every
// profile in it.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	profiles := make(map[string]*BusinessProfile)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profiles document defines no industries")
	}

	for key, p := range profiles {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", key, err)
		}
		if !strings.Contains(p.InitialGreeting, LeadNamePlaceholder) {
			return nil, fmt.Errorf("profile %q: initial_greeting is missing the %s placeholder", key, LeadNamePlaceholder)
		}
	}

	return &Store{profiles: profiles}, nil
}

// Lookup returns the profile for an industry key, or ErrUnknownIndustry if
// no profile is configured for it. It has no side effects.
func (s *Store) Lookup(industryKey string) (*BusinessProfile, error) {
	p, ok := s.profiles[industryKey]
	if !ok {
		return nil, ErrUnknownIndustry
	}
	return p, nil
}

// Industries returns the configured industry keys, for startup logging.
func (s *Store) Industries() []string {
	keys := make([]string, 0, len(s.profiles))
	for k := range s.profiles {
		keys = append(keys, k)
	}
	return keys
}
