// Package prompt resolves railsforge options from overrides, defaults, and
// interactive input into an immutable config.Resolved.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/donaldgifford/railsforge/internal/config"
)

// PromptFn is a callback for interactive option input. It receives the option
// and the values resolved so far, and returns the raw answer. An empty answer
// selects the default.
type PromptFn func(opt *config.Option, current map[string]any) (string, error)

// InvalidSelectionError reports an explicit value outside an option's domain.
type InvalidSelectionError struct {
	Option string
	Value  string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid selection for %q: %s", e.Option, e.Reason)
	}

	return fmt.Sprintf("invalid selection %q for %q: %s", e.Value, e.Option, e.Reason)
}

// Resolve turns an explicit selection into a Resolved config without prompting.
// A nil selection yields every option's default.
func Resolve(explicit map[string]string) (*config.Resolved, error) {
	return Collect(config.Options(), explicit, true, nil)
}

// Collect resolves every option through the override -> default -> prompt chain.
// Options are processed in table order so that dependent options see their
// parent's value. Options whose parent is disabled are never prompted and take
// their default, which is the value they would have if the parent were enabled.
//
// If useDefaults is true or promptFn is nil, no prompting happens.
func Collect(
	opts []config.Option,
	overrides map[string]string,
	useDefaults bool,
	promptFn PromptFn,
) (*config.Resolved, error) {
	if err := checkUnknown(opts, overrides); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(opts))
	explicit := make(map[string]bool, len(overrides))

	for i := range opts {
		opt := &opts[i]

		val, chosen, err := resolveOption(opt, overrides, values, useDefaults, promptFn)
		if err != nil {
			return nil, err
		}

		values[opt.Name] = val
		explicit[opt.Name] = chosen
	}

	if err := applyRules(values, explicit); err != nil {
		return nil, err
	}

	return config.NewResolved(values, explicit), nil
}

// checkUnknown rejects override keys that name no option. Keys are checked in
// sorted order so the reported error is stable.
func checkUnknown(opts []config.Option, overrides map[string]string) error {
	known := make(map[string]bool, len(opts))
	for i := range opts {
		known[opts[i].Name] = true
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if !known[name] {
			return &InvalidSelectionError{Option: name, Reason: "unknown option"}
		}
	}

	return nil
}

// resolveOption resolves a single option. The bool result reports whether the
// value came from the user rather than the default.
func resolveOption(
	opt *config.Option,
	overrides map[string]string,
	current map[string]any,
	useDefaults bool,
	promptFn PromptFn,
) (any, bool, error) {
	parentOn := parentEnabled(opt, current)

	if raw, ok := overrides[opt.Name]; ok {
		val, err := coerceValue(opt, raw)
		if err != nil {
			return nil, false, err
		}

		if !parentOn {
			return opt.DefaultValue(), false, nil
		}

		return val, true, nil
	}

	if useDefaults || promptFn == nil || !parentOn {
		return opt.DefaultValue(), false, nil
	}

	raw, err := promptFn(opt, current)
	if err != nil {
		return nil, false, fmt.Errorf("prompting for %q: %w", opt.Name, err)
	}

	if raw == "" && opt.Type != config.TypeString {
		return opt.DefaultValue(), false, nil
	}

	val, err := coerceValue(opt, raw)
	if err != nil {
		return nil, false, err
	}

	return val, true, nil
}

func parentEnabled(opt *config.Option, current map[string]any) bool {
	if opt.DependsOn == "" {
		return true
	}

	on, _ := current[opt.DependsOn].(bool)

	return on
}

// applyRules enforces cross-option constraints after every option has a value.
func applyRules(values map[string]any, explicit map[string]bool) error {
	if values[config.RenderFreeTier] == true && values[config.RenderDatabaseProvider] != config.ProviderSupabase {
		if explicit[config.RenderDatabaseProvider] {
			return &InvalidSelectionError{
				Option: config.RenderDatabaseProvider,
				Value:  fmt.Sprint(values[config.RenderDatabaseProvider]),
				Reason: "the Render free tier requires the supabase database provider",
			}
		}

		values[config.RenderDatabaseProvider] = config.ProviderSupabase
	}

	if values[config.RenderDomain] == "" {
		values[config.RenderIncludeWWW] = false
		explicit[config.RenderIncludeWWW] = false
	}

	return nil
}

// coerceValue validates a raw string against the option's domain and converts
// it to the option's Go type.
func coerceValue(opt *config.Option, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch opt.Type {
	case config.TypeBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, &InvalidSelectionError{Option: opt.Name, Value: raw, Reason: "expected a boolean"}
		}

		return b, nil
	case config.TypeEnum:
		v := strings.ToLower(raw)
		if !opt.HasChoice(v) {
			return nil, &InvalidSelectionError{
				Option: opt.Name,
				Value:  raw,
				Reason: "must be one of " + strings.Join(opt.Choices, ", "),
			}
		}

		return v, nil
	default:
		if err := validateValue(opt, raw); err != nil {
			return nil, err
		}

		return raw, nil
	}
}

// parseBool accepts strconv forms plus the y/n answers used at prompts.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "y", "yes", "on":
		return true, nil
	case "n", "no", "off":
		return false, nil
	}

	return strconv.ParseBool(raw)
}

// validateValue checks a string value against the option's validation regex.
func validateValue(opt *config.Option, raw string) error {
	if opt.Validate == "" {
		return nil
	}

	re, err := regexp.Compile(opt.Validate)
	if err != nil {
		return fmt.Errorf("invalid validation regex %q: %w", opt.Validate, err)
	}

	if !re.MatchString(raw) {
		return &InvalidSelectionError{Option: opt.Name, Value: raw, Reason: "does not match " + opt.Validate}
	}

	return nil
}
