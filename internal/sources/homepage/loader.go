// Package homepage reads Homepage (gethomepage.dev) bookmarks.yaml and
// services.yaml files so their links can be imported as bookmarks.
package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads one Homepage configuration file
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load parses the file as bookmarks.yaml, falling back to services.yaml,
// and returns its entries sorted by group then title.
func (l *Loader) Load() ([]Entry, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}

	var bookmarks BookmarksConfig
	bmErr := yaml.Unmarshal(data, &bookmarks)
	if bmErr == nil {
		if entries := MapBookmarks(bookmarks); len(entries) > 0 {
			return entries, nil
		}
	}

	var services ServicesConfig
	svcErr := yaml.Unmarshal(data, &services)
	if svcErr == nil {
		if entries := MapServices(services); len(entries) > 0 {
			return entries, nil
		}
	}

	if bmErr != nil && svcErr != nil {
		return nil, fmt.Errorf("failed to parse homepage yaml: %w", errors.Join(bmErr, svcErr))
	}
	return nil, fmt.Errorf("no bookmarks or services found in %s", l.filePath)
}

// LoadServices reads the file as services.yaml
func (l *Loader) LoadServices() (ServicesConfig, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}

	var config ServicesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse services yaml: %w", err)
	}
	return config, nil
}

// LoadBookmarks reads the file as bookmarks.yaml
func (l *Loader) LoadBookmarks() (BookmarksConfig, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	return config, nil
}

func (l *Loader) read() ([]byte, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	return stripTemplateVariables(data), nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
