package textgen

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder marks where a vocabulary word goes in a template sentence.
const Placeholder = "{mot}"

//go:embed stories.yaml
var defaultLibrary []byte

// Story is a short narrative shape: an intro, two or three middle sentences
// and a closing sentence.
type Story struct {
	Name    string   `yaml:"name"`
	Intro   string   `yaml:"intro"`
	Middles []string `yaml:"middles"`
	Closing string   `yaml:"closing"`
}

// Slots returns the sentences that take a word, in order.
func (s Story) Slots() []string {
	return append([]string{s.Intro}, s.Middles...)
}

// Library is the immutable template data a Synthesizer draws from.
type Library struct {
	Stories []Story  `yaml:"stories"`
	Fillers []string `yaml:"fillers"`
}

// LoadLibrary parses and validates a YAML template library.
func LoadLibrary(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse template library: %w", err)
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// DefaultLibrary returns the embedded French story library.
func DefaultLibrary() *Library {
	lib, err := LoadLibrary(defaultLibrary)
	if err != nil {
		panic(err)
	}
	return lib
}

func (l *Library) validate() error {
	if len(l.Stories) == 0 {
		return errors.New("template library has no stories")
	}
	if len(l.Fillers) == 0 {
		return errors.New("template library has no filler sentences")
	}
	for _, s := range l.Stories {
		if n := len(s.Middles); n < 2 || n > 3 {
			return fmt.Errorf("story %q has %d middle sentences, want 2 or 3", s.Name, n)
		}
		for _, sentence := range s.Slots() {
			if strings.Count(sentence, Placeholder) != 1 {
				return fmt.Errorf("story %q: sentence %q must hold exactly one placeholder", s.Name, sentence)
			}
		}
		if strings.Contains(s.Closing, Placeholder) {
			return fmt.Errorf("story %q: closing must not hold a placeholder", s.Name)
		}
	}
	for _, f := range l.Fillers {
		if strings.Count(f, Placeholder) != 1 {
			return fmt.Errorf("filler %q must hold exactly one placeholder", f)
		}
	}
	return nil
}
