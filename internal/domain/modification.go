package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind of parameter a what-if edit targets.
type ParameterType string

const (
	ParamProductionTarget        ParameterType = "production_target"
	ParamFacilityLocation        ParameterType = "facility_location"
	ParamPortSelection           ParameterType = "port_selection"
	ParamFreightInbound          ParameterType = "freight_cost_inbound"
	ParamFreightOutbound         ParameterType = "freight_cost_outbound"
	ParamFreightSea              ParameterType = "freight_cost_sea"
	ParamYieldFactor             ParameterType = "yield_factor"
	ParamMaxConsumption          ParameterType = "max_consumption"
	ParamRawMaterialAvailability ParameterType = "raw_material_availability"
	ParamMaterialPrice           ParameterType = "material_price"
)

// How a numeric edit combines with the current value.
type Action string

const (
	ActionSet      Action = "set"
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionMultiply Action = "multiply"
)

// Apply combines current with v according to the action.
func (a Action) Apply(current, v float64) (float64, error) {
	switch a {
	case ActionSet:
		return v, nil
	case ActionIncrease:
		return current + v, nil
	case ActionDecrease:
		return current - v, nil
	case ActionMultiply:
		return current * v, nil
	}
	return 0, fmt.Errorf("unknown action %q", a)
}

// Modification is one typed what-if edit.
//
// Value is kept raw because its shape depends on the parameter type: a number
// for numeric edits, a site id for facility forcing, a name or list of names
// for port forcing.
type Modification struct {
	ParameterType ParameterType   `json:"parameter_type"`
	Action        Action          `json:"action"`
	Value         json.RawMessage `json:"value"`
	Material      string          `json:"material,omitempty"`
	Site          string          `json:"site,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// Number decodes Value as a float. Numeric strings ("1.15") are accepted.
func (m Modification) Number() (float64, error) {
	if len(m.Value) == 0 {
		return 0, errors.New("value is required")
	}
	var f float64
	if err := json.Unmarshal(m.Value, &f); err != nil {
		var s string
		if err := json.Unmarshal(m.Value, &s); err != nil {
			return 0, fmt.Errorf("value %s is not a number", string(m.Value))
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("value %q is not a number", s)
		}
	}
	// ParseFloat accepts "NaN" and "Inf", which slip past every range check.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %s is not a finite number", string(m.Value))
	}
	return f, nil
}

// Text decodes Value as a non-empty string.
func (m Modification) Text() (string, error) {
	var s string
	if err := json.Unmarshal(m.Value, &s); err != nil {
		return "", fmt.Errorf("value %s is not a string", string(m.Value))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("value must not be empty")
	}
	return s, nil
}

// Names decodes Value as a string or a list of strings.
func (m Modification) Names() ([]string, error) {
	var list []string
	if err := json.Unmarshal(m.Value, &list); err == nil {
		if len(list) == 0 {
			return nil, errors.New("value must list at least one name")
		}
		return list, nil
	}
	s, err := m.Text()
	if err != nil {
		return nil, fmt.Errorf("value %s is neither a name nor a list of names", string(m.Value))
	}
	return []string{s}, nil
}

// NewModification builds an edit from a Go value, mostly for tests and
// callers that construct scenarios programmatically.
func NewModification(param ParameterType, action Action, value any) Modification {
	raw, _ := json.Marshal(value)
	return Modification{ParameterType: param, Action: action, Value: raw}
}
