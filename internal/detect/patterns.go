package detect

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var embeddedPatterns []byte

// EmailPattern maps an MX exchange suffix to an email provider name.
type EmailPattern struct {
	Suffix   string `yaml:"suffix"`
	Provider string `yaml:"provider"`
}

// DNSPattern maps an NS server suffix or substring to a DNS hosting provider name.
// If Contains is non-empty, substring matching is used; otherwise suffix matching applies.
type DNSPattern struct {
	Suffix   string `yaml:"suffix"`
	Contains string `yaml:"contains"`
	Provider string `yaml:"provider"`
}

// TXTPattern maps a TXT record substring to a provider name and service type.
type TXTPattern struct {
	Substring string      `yaml:"substring"`
	Provider  string      `yaml:"provider"`
	Type      ServiceType `yaml:"type"`
}

// Patterns holds all detection patterns.
type Patterns struct {
	Email []EmailPattern `yaml:"email"`
	DNS   []DNSPattern   `yaml:"dns"`
	TXT   []TXTPattern   `yaml:"txt"`
}

// LoadPatterns reads the pattern file at path, or the built-in patterns when
// path is empty. A configured path that does not exist is an error.
func LoadPatterns(path string) (Patterns, error) {
	data, source := embeddedPatterns, "embedded patterns"
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return Patterns{}, fmt.Errorf("reading patterns file %q: %w", path, err)
		}
		source = path
	}
	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patterns{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	return p, nil
}
