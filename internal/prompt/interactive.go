package prompt

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/donaldgifford/railsforge/internal/config"
)

// ErrCancelled is returned when the user aborts an interactive prompt.
var ErrCancelled = errors.New("prompt cancelled by user")

// IsInteractive reports whether stdin is a terminal that can drive prompts.
func IsInteractive() bool {
	fd := os.Stdin.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ConfirmCustomize asks whether the user wants to go through each option.
// Declining means every option not set explicitly keeps its default.
func ConfirmCustomize() (bool, error) {
	customize := false

	confirm := huh.NewConfirm().
		Title("Would you like to customize the default configuration?").
		Description("Defaults include RSpec, StandardRB, Bullet, Rollbar, Ahoy + Blazer, and more.").
		Affirmative("Customize").
		Negative("Use defaults").
		Value(&customize)

	if err := runField(confirm); err != nil {
		return false, err
	}

	return customize, nil
}

// HuhPrompt is a PromptFn that asks for each option with a huh form. Each
// option runs as its own form so answers are available to later options.
func HuhPrompt(opt *config.Option, _ map[string]any) (string, error) {
	switch opt.Type {
	case config.TypeBool:
		return promptBool(opt)
	case config.TypeEnum:
		return promptEnum(opt)
	default:
		return promptString(opt)
	}
}

func promptBool(opt *config.Option) (string, error) {
	value := opt.Default == "true"

	field := huh.NewConfirm().
		Title(opt.Title).
		Description(opt.Description).
		Value(&value)

	if err := runField(field); err != nil {
		return "", err
	}

	return strconv.FormatBool(value), nil
}

func promptEnum(opt *config.Option) (string, error) {
	selected := opt.Default

	options := make([]huh.Option[string], len(opt.Choices))
	for i, c := range opt.Choices {
		label := c
		if c == opt.Default {
			label += " (default)"
		}

		options[i] = huh.NewOption(label, c)
	}

	field := huh.NewSelect[string]().
		Title(opt.Title).
		Description(opt.Description).
		Options(options...).
		Value(&selected)

	if err := runField(field); err != nil {
		return "", err
	}

	return selected, nil
}

func promptString(opt *config.Option) (string, error) {
	value := opt.Default

	field := huh.NewInput().
		Title(opt.Title).
		Description(opt.Description).
		Value(&value)

	if opt.Validate != "" {
		re, err := regexp.Compile(opt.Validate)
		if err != nil {
			return "", fmt.Errorf("invalid validation regex %q: %w", opt.Validate, err)
		}

		field = field.Validate(func(s string) error {
			if !re.MatchString(s) {
				return fmt.Errorf("%q is not a valid value", s)
			}

			return nil
		})
	}

	if err := runField(field); err != nil {
		return "", err
	}

	return value, nil
}

func runField(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}

		return fmt.Errorf("prompt error: %w", err)
	}

	return nil
}
