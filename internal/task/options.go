package task

import (
	"fmt"

	"github.com/meteovis/meteovis/internal/domain"
)

// Option keys understood by the tasks.
const (
	OptScan       = "scan"
	OptQuantity   = "qty"
	OptAppearance = "appearance"
)

// Appearance values. Dynamic series animate frame by frame, static series
// are shown as one stacked view.
const (
	AppearanceDynamic = "dynamic"
	AppearanceStatic  = "static"
)

// OptionKindDropdown is the only control kind offered today.
const OptionKindDropdown = "dropdown"

// Choice is one selectable value of an Option.
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Option describes one user-selectable setting of a task.
type Option struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Choices     []Choice `json:"choices"`
	Description string   `json:"description"`
}

// Label returns the label of value, or value itself when it is not a choice.
func (o Option) Label(value string) string {
	for _, c := range o.Choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Has reports whether value is one of the choices.
func (o Option) Has(value string) bool {
	for _, c := range o.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Config is a user's task selection for one batch run.
type Config struct {
	Name    string
	Desc    string
	Task    string // kind tag or label
	Options map[string]string
}

// Kind resolves the configured task.
func (c Config) Kind() (Kind, error) {
	return ParseKind(c.Task)
}

// Option returns the configured value for key.
func (c Config) Option(key string) string {
	return c.Options[key]
}

// WithDefaults returns a copy of c where every option missing from
// c.Options takes the first choice offered in opts.
func (c Config) WithDefaults(opts []Option) Config {
	merged := make(map[string]string, len(opts))
	for _, o := range opts {
		if len(o.Choices) > 0 {
			merged[o.Key] = o.Choices[0].Value
		}
	}
	for k, v := range c.Options {
		if v != "" {
			merged[k] = v
		}
	}
	c.Options = merged
	return c
}

// Validate checks the configured values against the choices in opts.
func (c Config) Validate(opts []Option) error {
	for _, o := range opts {
		v, ok := c.Options[o.Key]
		if !ok || v == "" {
			return fmt.Errorf("%w: option %q not set", domain.ErrConfiguration, o.Key)
		}
		if !o.Has(v) {
			return fmt.Errorf("%w: option %q has no choice %q", domain.ErrSelectionNotFound, o.Key, v)
		}
	}
	return nil
}

func appearanceOption() Option {
	return Option{
		Key:  OptAppearance,
		Name: "Appearance",
		Kind: OptionKindDropdown,
		Choices: []Choice{
			{Label: "Dynamic", Value: AppearanceDynamic},
			{Label: "Static", Value: AppearanceStatic},
		},
		Description: "Animate the series frame by frame or show it as one view.",
	}
}

func findOption(opts []Option, key string) (Option, bool) {
	for _, o := range opts {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}
