package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
)

// toggleLiteralValues maps every accepted spelling to its boolean meaning.
// Matching is case-insensitive after trimming.
var toggleLiteralValues = map[string]bool{
	toggleTrueCanonicalValue:  true,
	toggleFalseCanonicalValue: false,
	"yes":                     true,
	"no":                      false,
	"on":                      true,
	"off":                     false,
	"1":                       true,
	"0":                       false,
	"t":                       true,
	"f":                       false,
	"y":                       true,
	"n":                       false,
}

// The registry records every toggle flag so NormalizeToggleArguments can tell
// toggle flags apart from ordinary flags that take a value.
var (
	toggleFlagRegistryMutex sync.RWMutex
	toggleFlagNames         = map[string]struct{}{}
	toggleFlagShorthands    = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that accepts yes/no style spellings
// and defaults to true when passed without a value. A nil target is allowed;
// callers then read the value through the flag set.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target)
	if len(shorthand) > 0 {
		flagSet.VarP(toggleValue, name, shorthand, usage)
	} else {
		flagSet.Var(toggleValue, name, usage)
	}

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	registerToggleFlag(name, shorthand)
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for
// registered toggle flags so pflag does not treat the value as a positional
// argument. Everything after a bare "--" passes through untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if normalizedArgument, consumed := normalizeToggleArgument(current, arguments, index); consumed > 0 {
			normalized = append(normalized, normalizedArgument)
			index += consumed
			continue
		}

		normalized = append(normalized, current)
		index++
	}

	return normalized
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}

	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return "bool"
}

// parseToggleValue maps a raw spelling to its boolean meaning. An empty value
// means the flag appeared bare and counts as true.
func parseToggleValue(rawValue string) (bool, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return true, nil
	}

	parsedValue, recognized := toggleLiteralValues[strings.ToLower(trimmedValue)]
	if !recognized {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func registerToggleFlag(name string, shorthand string) {
	toggleFlagRegistryMutex.Lock()
	defer toggleFlagRegistryMutex.Unlock()
	toggleFlagNames[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleFlagShorthands[shorthand] = struct{}{}
	}
}

// normalizeToggleArgument inspects one argument. It reports the rewritten
// argument and how many input arguments it consumed, or zero when the
// argument does not reference a registered toggle flag.
func normalizeToggleArgument(current string, arguments []string, index int) (string, int) {
	flagToken, isRegistered := classifyToggleArgument(current)
	if !isRegistered {
		return "", 0
	}

	if strings.Contains(flagToken, "=") {
		return current, 1
	}
	if index+1 >= len(arguments) {
		return current, 1
	}

	nextValue := arguments[index+1]
	if strings.HasPrefix(nextValue, "-") {
		return current, 1
	}
	return current + "=" + nextValue, 2
}

// classifyToggleArgument strips the dash prefix and reports whether the flag
// name or single-letter shorthand belongs to a registered toggle.
func classifyToggleArgument(current string) (string, bool) {
	if strings.HasPrefix(current, "--") {
		flagToken := strings.TrimPrefix(current, "--")
		name := flagToken
		if equalsIndex := strings.Index(flagToken, "="); equalsIndex >= 0 {
			name = flagToken[:equalsIndex]
		}
		if len(name) == 0 {
			return "", false
		}
		return flagToken, isToggleName(name)
	}

	if strings.HasPrefix(current, "-") {
		flagToken := strings.TrimPrefix(current, "-")
		shorthand := flagToken
		if equalsIndex := strings.Index(flagToken, "="); equalsIndex >= 0 {
			shorthand = flagToken[:equalsIndex]
		}
		if len(shorthand) != 1 {
			return "", false
		}
		return flagToken, isToggleShorthand(shorthand)
	}

	return "", false
}

func isToggleName(name string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagNames[name]
	return exists
}

func isToggleShorthand(shorthand string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagShorthands[shorthand]
	return exists
}
