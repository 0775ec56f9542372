package gremlin

import (
	"encoding/json"

	"github.com/cayleygraph/quad"
)

// Step is a single operation of a traversal. Steps are immutable descriptions;
// compiling a step applies its effect to the Context.
type Step interface {
	// Description returns a short help string for the step.
	Description() string
	// Compile applies the step to the context.
	Compile(c *Context) error
}

// Traversal is an ordered list of steps.
type Traversal []Step

func (t Traversal) MarshalJSON() ([]byte, error) {
	arr := make([]json.RawMessage, 0, len(t))
	for _, s := range t {
		data, err := Marshal(s)
		if err != nil {
			return nil, err
		}
		arr = append(arr, data)
	}
	return json.Marshal(arr)
}

func (t *Traversal) UnmarshalJSON(data []byte) error {
	tr, err := UnmarshalTraversal(data)
	if err != nil {
		return err
	}
	*t = tr
	return nil
}

// Labeled is implemented by steps that bind labels to the current element.
// Match uses it to find start and end labels of fragments.
type Labeled interface {
	Step
	StepLabels() []string
}

// ByModulator is implemented by steps accepting by() modulators.
type ByModulator interface {
	Step
	AddBy(b By) error
}

// OptionModulator is implemented by steps accepting option() modulators.
type OptionModulator interface {
	Step
	AddOption(o Option) error
}

// TimesModulator is implemented by steps accepting a times() modulator.
type TimesModulator interface {
	Step
	SetTimes(n int) error
}

// LoopModulator is implemented by steps accepting until() and emit() modulators.
type LoopModulator interface {
	Step
	SetUntil(t Traversal) error
	SetEmit(t Traversal) error
}

// EndpointModulator is implemented by steps accepting from() and to() modulators.
type EndpointModulator interface {
	Step
	SetFrom(e Endpoint) error
	SetTo(e Endpoint) error
}

// Endpoint is a vertex referenced by from() or to(): either a label or a traversal.
type Endpoint struct {
	Label     string    `json:"label,omitempty"`
	Traversal Traversal `json:"traversal,omitempty"`
}

// IsZero reports if endpoint is not set.
func (e Endpoint) IsZero() bool {
	return e.Label == "" && e.Traversal == nil
}

// Option is a branch of choose() selected by a key value.
type Option struct {
	Key       quad.Value
	None      bool // selected when no other option matches
	Traversal Traversal
}

type jsonOption struct {
	Key       json.RawMessage `json:"key,omitempty"`
	None      bool            `json:"none,omitempty"`
	Traversal Traversal       `json:"traversal"`
}

func (o Option) MarshalJSON() ([]byte, error) {
	out := jsonOption{None: o.None, Traversal: o.Traversal}
	if !o.None {
		data, err := json.Marshal(nativeOf(o.Key))
		if err != nil {
			return nil, err
		}
		out.Key = data
	}
	return json.Marshal(out)
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var in jsonOption
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = Option{None: in.None, Traversal: in.Traversal}
	if len(in.Key) != 0 && !in.None {
		v, err := parseValue(in.Key)
		if err != nil {
			return err
		}
		o.Key = v
	}
	return nil
}
