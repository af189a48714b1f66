// Package rules compiles a YAML rule-set into an executable RuleSet and
// evaluates it against flight state.
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigError wraps a rule-set load failure: a malformed document, an
// unknown key, or a reference to an undeclared aircraft list or region
// name. It is always returned from Load, never panicked.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rules: %v", e.Err)
	}
	return fmt.Sprintf("rules: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// rawDocument is the top-level shape of a rule-set YAML file.
type rawDocument struct {
	AircraftLists map[string][]string `yaml:"aircraft_lists"`
	Rules         map[string]rawRule  `yaml:"rules"`
}

type rawRule struct {
	Conditions rawConditions `yaml:"conditions"`
	Actions    rawActions    `yaml:"actions"`
}

// rawConditions mirrors spec.md §6's condition block exactly; decoding
// into a fixed-field struct (rather than a generic map) is what gives us
// unknown-key rejection for free via yaml.Decoder.KnownFields.
type rawConditions struct {
	MinAlt                 *int      `yaml:"min_alt"`
	MaxAlt                 *int      `yaml:"max_alt"`
	AircraftList           *string   `yaml:"aircraft_list"`
	ExcludeAircraftList    *string   `yaml:"exclude_aircraft_list"`
	ExcludeAircraftSubstrs []string  `yaml:"exclude_aircraft_substrs"`
	Regions                *[]string `yaml:"regions"`
	TransitionRegions      []string  `yaml:"transition_regions"`
	LatLongRing            []float64 `yaml:"latlongring"`
	Proximity              []float64 `yaml:"proximity"`
	Cooldown               *float64  `yaml:"cooldown"`
	RuleCooldown           *float64  `yaml:"rule_cooldown"`
	HasAttr                *string   `yaml:"has_attr"`
	MinTime                *int      `yaml:"min_time"`
	MaxTime                *int      `yaml:"max_time"`
}

// rawActions mirrors spec.md §6's action block; one field per kind. A rule
// that repeats an action key is rejected: the yaml.v3 decoder reports a
// field set twice as a decode error, so each kind appears at most once.
type rawActions struct {
	Callback       *string        `yaml:"callback"`
	ExpireCallback *string        `yaml:"expire_callback"`
	Print          *bool          `yaml:"print"`
	Note           nullableString `yaml:"note"`
	Track          *bool          `yaml:"track"`
	Webhook        []string       `yaml:"webhook"`
	Shell          *string        `yaml:"shell"`
}

// nullableString distinguishes an absent "note:" key from a present
// "note: null", needed because spec.md §4.6 gives those two cases
// different meanings: absent means "no note action at all", present-null
// means "clear any existing note".
type nullableString struct {
	Present bool
	Value   *string
}

func (n *nullableString) UnmarshalYAML(value *yaml.Node) error {
	n.Present = true
	if value.Tag == "!!null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// LoadFile reads and strictly parses a rule-set YAML document from path.
// Unknown keys anywhere in the document are a ConfigError, per spec.md's
// requirement that malformed rule-sets fail fast at startup rather than
// silently ignoring a typo'd condition or action name.
func LoadFile(path string) (*rawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := decodeStrict(f)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return doc, nil
}

// LoadFromReader parses a rule-set YAML document already held in memory
// (embedded test fixtures, a config value fetched from elsewhere), with
// the same strict unknown-key rejection as LoadFile.
func LoadFromReader(src string) (*rawDocument, error) {
	doc, err := decodeStrict(strings.NewReader(src))
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return doc, nil
}

func decodeStrict(r io.Reader) (*rawDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var doc rawDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	// yaml.v3 skips UnmarshalYAML for null nodes, so mark "note: null" here.
	var loose struct{ Rules map[string]struct{ Actions map[string]any } }
	_ = yaml.Unmarshal(data, &loose)
	for name, lr := range loose.Rules {
		if v, ok := lr.Actions["note"]; ok && v == nil {
			rule := doc.Rules[name]
			rule.Actions.Note = nullableString{Present: true}
			doc.Rules[name] = rule
		}
	}
	return &doc, nil
}
