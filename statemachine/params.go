package statemachine

import (
	"fmt"
	"time"
)

// Params reads typed values from a hook's parameter map. Every failure
// wraps ErrInvalidHookParameter.
type Params map[string]any

// String returns the string at key, or defaultVal when it is absent.
func (p Params) String(key, defaultVal string) (string, error) {
	val, exists := p[key]
	if !exists || val == nil {
		return defaultVal, nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidHookParameter, key, val)
	}

	return str, nil
}

// RequiredString is String for a key that must be present and non-empty.
func (p Params) RequiredString(key string) (string, error) {
	str, err := p.String(key, "")
	if err != nil {
		return "", err
	}

	if str == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidHookParameter, key)
	}

	return str, nil
}

// Duration accepts a Go duration string or a number of seconds.
func (p Params) Duration(key string, required bool, defaultVal time.Duration) (time.Duration, error) {
	val, exists := p[key]
	if !exists || val == nil {
		if required {
			return 0, fmt.Errorf("%w: %s is required", ErrInvalidHookParameter, key)
		}

		return defaultVal, nil
	}

	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidHookParameter, key, err)
		}

		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a duration string or number, got %T",
			ErrInvalidHookParameter, key, val)
	}
}

// HookConfigs decodes a list of nested hook references, as used by the
// sequence hook.
func (p Params) HookConfigs(key string) ([]HookConfig, error) {
	raw, ok := p[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of hooks", ErrInvalidHookParameter, key)
	}

	configs := make([]HookConfig, 0, len(raw))

	for idx, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a mapping", ErrInvalidHookParameter, key, idx)
		}

		nested := Params(entry)

		hookType, err := nested.String("type", "")
		if err != nil {
			return nil, err
		}

		name, err := nested.String("name", "")
		if err != nil {
			return nil, err
		}

		var params map[string]any

		if rawParams, exists := entry["parameters"]; exists && rawParams != nil {
			params, ok = rawParams.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d].parameters is not a mapping", ErrInvalidHookParameter, key, idx)
			}
		}

		configs = append(configs, HookConfig{Type: hookType, Name: name, Parameters: params})
	}

	return configs, nil
}
