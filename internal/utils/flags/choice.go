// Package flags provides helpers for binding shared flags to Cobra commands.
package flags

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceValueTypeName      = "choice"
	choiceRejectedTemplate   = "invalid value %q (expected one of %s)"
	choiceListJoinSeparator  = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag that only accepts one of the supplied choices.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, shorthand string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}

	*target = defaultChoice
	value := &choiceValue{target: target, choices: normalizeChoices(choices)}
	usage := FormatChoiceUsage(defaultChoice, choices, description)
	if len(shorthand) > 0 {
		flagSet.VarP(value, name, shorthand, usage)
		return
	}
	flagSet.Var(value, name, usage)
}

type choiceValue struct {
	target  *string
	choices []string
}

func (value *choiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if !slices.Contains(value.choices, normalizedValue) {
		return fmt.Errorf(choiceRejectedTemplate, rawValue, strings.Join(value.choices, choiceListJoinSeparator))
	}
	*value.target = normalizedValue
	return nil
}

func (value *choiceValue) Type() string {
	return choiceValueTypeName
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(trimmedChoice) == 0 || slices.Contains(normalized, trimmedChoice) {
			continue
		}
		normalized = append(normalized, trimmedChoice)
	}
	return normalized
}

// buildChoicePlaceholder renders the normalized choices with the default upper-cased.
func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := normalizeChoices(choices)
	for index, choice := range displayed {
		if choice == normalizedDefault {
			displayed[index] = strings.ToUpper(choice)
		}
	}
	return choicePlaceholderPrefix + strings.Join(displayed, choiceSeparatorLiteral) + choicePlaceholderSuffix
}
