package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName            = "toggle"
	toggleFlagTrueLiteral         = "true"
	toggleFlagAcceptedValues      = "true, false, yes, no, on, off, 1, 0"
	errorInvalidToggleValueFormat = "invalid value %q for --%s; accepted values: %s"
)

var toggleFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// toggleFlagValue is a boolean flag that also accepts yes/no style literals.
type toggleFlagValue struct {
	target   *bool
	flagName string
}

func (value *toggleFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleFlagTrueLiteral
	}
	parsed, known := toggleFlagLiterals[normalized]
	if !known {
		return fmt.Errorf(errorInvalidToggleValueFormat, input, value.flagName, toggleFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return "false"
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

// registerToggleFlag adds a toggle named name to flagSet. A bare --name sets it to true.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&toggleFlagValue{target: target, flagName: name}, name, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.NoOptDefVal = toggleFlagTrueLiteral
	}
}

// normalizeToggleArguments joins "--name literal" into "--name=literal" for
// toggle flags, so that a following source directory is never taken as the
// flag value while "--copy no" still works.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	command.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleFlagTypeName {
			toggleNames[flag.Name] = struct{}{}
		}
	})

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName := strings.TrimPrefix(argument, "--")
		_, isToggle := toggleNames[flagName]
		if isToggle && strings.HasPrefix(argument, "--") && index+1 < len(arguments) {
			literal := strings.ToLower(strings.TrimSpace(arguments[index+1]))
			if _, known := toggleFlagLiterals[literal]; known {
				normalized = append(normalized, argument+"="+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}
