package listener

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster maps chat identities and message prefixes onto tracker GIDs.
// It is loaded once at startup from a YAML file:
//
//	users:
//	  brien: "1201234567890"
//	projects:
//	  SMR: "1209876543210"
type Roster struct {
	Users    map[string]string `yaml:"users"`
	Projects map[string]string `yaml:"projects"`
}

// LoadRoster reads and validates a roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(roster.Users) == 0 {
		return nil, fmt.Errorf("roster %s has no users", path)
	}
	if len(roster.Projects) == 0 {
		return nil, fmt.Errorf("roster %s has no projects", path)
	}

	return &roster, nil
}

// AssigneeFor resolves a chat username to a tracker user GID.
func (r *Roster) AssigneeFor(username string) (string, bool) {
	gid, ok := r.Users[strings.ToLower(strings.TrimSpace(username))]
	return gid, ok && gid != ""
}

// ProjectFor resolves a message prefix to a project GID. Prefixes are
// matched case-insensitively against the roster keys.
func (r *Roster) ProjectFor(prefix string) (string, bool) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	for key, gid := range r.Projects {
		if strings.ToUpper(key) == prefix && gid != "" {
			return gid, true
		}
	}
	return "", false
}
