package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is one entry of a quality profile.
type Rule struct {
	Key    string `yaml:"key"`
	Active bool   `yaml:"active"`
}

// Profile is the set of rules configured for a project.
type Profile struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// LoadProfile reads a YAML quality profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML quality profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	for i, r := range p.Rules {
		if r.Key == "" {
			return nil, fmt.Errorf("rule %d has no key", i)
		}
	}
	return &p, nil
}

// NewProfile builds a profile with every given key active.
func NewProfile(name string, keys ...string) *Profile {
	p := &Profile{Name: name}
	for _, k := range keys {
		p.Rules = append(p.Rules, Rule{Key: k, Active: true})
	}
	return p
}

// ActiveKeys returns the keys of active rules in profile order.
func (p *Profile) ActiveKeys() []string {
	if p == nil {
		return nil
	}
	var keys []string
	for _, r := range p.Rules {
		if r.Active {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// AnyActive reports whether an active rule satisfies match.
func (p *Profile) AnyActive(match func(key string) bool) bool {
	for _, k := range p.ActiveKeys() {
		if match(k) {
			return true
		}
	}
	return false
}
