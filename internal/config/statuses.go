package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/flowmetrics/leadtime/internal/types"
)

// statusEntry accepts either the legacy string form ("*Done") or a
// {name, done} mapping.
type statusEntry types.Status

func (e *statusEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*e = statusEntry(types.ParseStatus(node.Value))
		return nil
	}
	var s types.Status
	if err := node.Decode(&s); err != nil {
		return err
	}
	*e = statusEntry(s)
	return nil
}

// statusesFile is the layout of a statuses-file.
type statusesFile struct {
	Statuses []statusEntry `yaml:"statuses"`
}

type tomlStatusesFile struct {
	Statuses []types.Status `toml:"statuses"`
}

// LoadStatuses returns the configured statuses in report column order.
// statuses-file takes precedence over the inline statuses key.
func LoadStatuses() ([]types.Status, error) {
	var (
		statuses []types.Status
		err      error
	)
	if path := GetString("statuses-file"); path != "" {
		statuses, err = ReadStatusesFile(path)
	} else {
		statuses, err = parseStatuses(Get("statuses"))
	}
	if err != nil {
		return nil, err
	}
	return statuses, validateStatuses(statuses)
}

// ReadStatusesFile reads a YAML or TOML file holding a statuses list.
// The format is chosen by extension; anything but .toml is read as YAML.
func ReadStatusesFile(path string) ([]types.Status, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is user configuration
	if err != nil {
		return nil, &ConfigurationError{Key: "statuses-file", Reason: err.Error()}
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var f tomlStatusesFile
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, &ConfigurationError{Key: "statuses-file", Reason: fmt.Sprintf("parse %s: %v", path, err)}
		}
		return f.Statuses, nil
	}

	var f statusesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ConfigurationError{Key: "statuses-file", Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	statuses := make([]types.Status, len(f.Statuses))
	for i, e := range f.Statuses {
		statuses[i] = types.Status(e)
	}
	return statuses, nil
}

// parseStatuses converts the raw viper value of the statuses key. It accepts
// a list of strings or maps, or a comma separated string (from the
// environment).
func parseStatuses(raw interface{}) ([]types.Status, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var statuses []types.Status
		for _, part := range strings.Split(val, ",") {
			if strings.TrimSpace(part) != "" {
				statuses = append(statuses, types.ParseStatus(part))
			}
		}
		return statuses, nil
	case []string:
		statuses := make([]types.Status, len(val))
		for i, s := range val {
			statuses[i] = types.ParseStatus(s)
		}
		return statuses, nil
	case []types.Status:
		return val, nil
	case []interface{}:
		statuses := make([]types.Status, 0, len(val))
		for i, item := range val {
			s, err := parseStatusItem(item)
			if err != nil {
				return nil, &ConfigurationError{Key: fmt.Sprintf("statuses[%d]", i), Reason: err.Error()}
			}
			statuses = append(statuses, s)
		}
		return statuses, nil
	default:
		return nil, &ConfigurationError{Key: "statuses", Reason: fmt.Sprintf("unsupported value of type %T", raw)}
	}
}

func parseStatusItem(item interface{}) (types.Status, error) {
	switch it := item.(type) {
	case string:
		return types.ParseStatus(it), nil
	case map[string]interface{}:
		name, _ := it["name"].(string)
		s := types.Status{Name: strings.TrimSpace(name)}
		if done, ok := it["done"]; ok {
			b, ok := done.(bool)
			if !ok {
				return types.Status{}, fmt.Errorf("done must be a boolean")
			}
			s.Done = b
		}
		return s, nil
	default:
		return types.Status{}, fmt.Errorf("expected a string or a {name, done} map, got %T", item)
	}
}

func validateStatuses(statuses []types.Status) error {
	if len(statuses) == 0 {
		return &ConfigurationError{Key: "statuses", Reason: "no statuses configured"}
	}
	seen := make(map[string]bool, len(statuses))
	for i, s := range statuses {
		if s.Name == "" {
			return &ConfigurationError{Key: fmt.Sprintf("statuses[%d]", i), Reason: "empty status name"}
		}
		n := types.NormalizeStatus(s.Name)
		if seen[n] {
			return &ConfigurationError{Key: "statuses", Reason: fmt.Sprintf("duplicate status %q", s.Name)}
		}
		seen[n] = true
	}
	return nil
}

// DoneStatuses returns the set of done statuses. If none is flagged and
// guess is true, the last configured status is taken as done and guessed
// reports it.
func DoneStatuses(statuses []types.Status, guess bool) (done types.StatusSet, guessed bool, err error) {
	done = types.DoneSet(statuses)
	if done.Len() > 0 {
		return done, false, nil
	}
	if guess && len(statuses) > 0 {
		return types.NewStatusSet(statuses[len(statuses)-1].Name), true, nil
	}
	return nil, false, &ConfigurationError{
		Key:    "statuses",
		Reason: "no done status configured (mark one with done: true or a leading '*')",
	}
}
