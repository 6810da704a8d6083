package config

import (
	"fmt"
	"regexp"
	"strings"
)

// validOptionTypes are the allowed option types.
var validOptionTypes = map[OptionType]bool{
	TypeBool:   true,
	TypeEnum:   true,
	TypeString: true,
}

// ValidateOptions checks an option table for unique names, well-formed
// defaults, and dependencies that point at earlier bool options.
func ValidateOptions(opts []Option) error {
	seen := make(map[string]OptionType, len(opts))

	for i := range opts {
		if err := validateOption(&opts[i], i, seen); err != nil {
			return err
		}

		seen[opts[i].Name] = opts[i].Type
	}

	return nil
}

func validateOption(o *Option, index int, seen map[string]OptionType) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("options[%d]: name is required", index)
	}

	if _, dup := seen[o.Name]; dup {
		return fmt.Errorf("options[%d] (%s): duplicate option name", index, o.Name)
	}

	if !validOptionTypes[o.Type] {
		return fmt.Errorf("options[%d] (%s): invalid type %q, must be one of: bool, enum, string", index, o.Name, o.Type)
	}

	switch o.Type {
	case TypeBool:
		if o.Default != "true" && o.Default != "false" {
			return fmt.Errorf("options[%d] (%s): bool default must be \"true\" or \"false\", got %q", index, o.Name, o.Default)
		}
	case TypeEnum:
		if len(o.Choices) == 0 {
			return fmt.Errorf("options[%d] (%s): choices are required for type \"enum\"", index, o.Name)
		}

		if !o.HasChoice(o.Default) {
			return fmt.Errorf("options[%d] (%s): default %q is not one of %v", index, o.Name, o.Default, o.Choices)
		}
	case TypeString:
	}

	if o.Validate != "" {
		re, err := regexp.Compile(o.Validate)
		if err != nil {
			return fmt.Errorf("options[%d] (%s): invalid validate regex %q: %w", index, o.Name, o.Validate, err)
		}

		if !re.MatchString(o.Default) {
			return fmt.Errorf("options[%d] (%s): default %q does not match %q", index, o.Name, o.Default, o.Validate)
		}
	}

	if o.DependsOn != "" {
		parentType, ok := seen[o.DependsOn]
		if !ok {
			return fmt.Errorf("options[%d] (%s): depends_on %q must name an earlier option", index, o.Name, o.DependsOn)
		}

		if parentType != TypeBool {
			return fmt.Errorf("options[%d] (%s): depends_on %q must be a bool option", index, o.Name, o.DependsOn)
		}
	}

	return nil
}
