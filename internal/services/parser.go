package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Action identifies one supported voice command
type Action string

const (
	ActionAddClient        Action = "add_client"
	ActionAddProduct       Action = "add_product"
	ActionStartMeasurement Action = "start_measurement"
	ActionEndMeasurement   Action = "end_measurement"
	ActionListClients      Action = "list_clients"
	ActionListProducts     Action = "list_products"
	ActionListMeasurements Action = "list_measurements"
	ActionHelp             Action = "help"
)

// Command is a parsed voice command
type Command struct {
	Action Action
	Params []string
}

// MaxInputLength caps how much text the matchers will look at. Longer
// input is answered with the help text instead of being matched. Name
// captures are additionally capped at 100 runes.
const MaxInputLength = 500

// EndRecordingPhrase ends a measurement dictation wherever it appears
// in the utterance
const EndRecordingPhrase = "конец записи"

// IsEndOfRecording reports whether the utterance asks to finish a
// measurement dictation
func IsEndOfRecording(text string) bool {
	return strings.Contains(strings.ToLower(text), EndRecordingPhrase)
}

// matcher recognizes one command template against normalized
// (lower-cased, trimmed) text, or returns nil
type matcher func(text string) *Command

var (
	// The remember/record templates are anchored only at the end, so
	// filler before the verb ("пожалуйста запомни клиента вася") is
	// tolerated. The list templates match the whole utterance.
	addClientRe        = regexp.MustCompile(`(?s)запомни\s+(?:нового\s+)?клиента\s+(.{1,100})$`)
	createForPrefixRe  = regexp.MustCompile(`^создай\s+для\s+`)
	productSeparatorRe = regexp.MustCompile(`\s+изделие\s+`)
	startMeasureRe     = regexp.MustCompile(`(?s)запоминай\s+замеры\s+для\s+(.{1,100})$`)
	listClientsRe      = regexp.MustCompile(`^(?:перечисли|список)\s+клиентов$`)
	listProductsRe     = regexp.MustCompile(`(?s)^перечисли\s+изделия\s+(?:для\s+)?(.{1,100})$`)
	listMeasureRe      = regexp.MustCompile(`(?s)^перечисли\s+замеры\s+(?:для\s+)?(.{1,100})$`)
	helpRe             = regexp.MustCompile(`помощь|что ты умеешь|команды`)
)

func matchAddClient(text string) *Command {
	m := addClientRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &Command{Action: ActionAddClient, Params: []string{strings.TrimSpace(m[1])}}
}

// matchAddProduct parses "создай для <клиент> изделие <название>"
// structurally: a fixed prefix plus a single separator split, so that
// arbitrarily long client and product names cannot blow up a capture.
func matchAddProduct(text string) *Command {
	if !strings.HasPrefix(text, "создай для ") || !strings.Contains(text, " изделие ") {
		return nil
	}
	parts := productSeparatorRe.Split(text, -1)
	if len(parts) != 2 {
		return nil
	}
	client := strings.TrimSpace(createForPrefixRe.ReplaceAllString(parts[0], ""))
	product := strings.TrimSpace(parts[1])
	if client == "" || product == "" {
		return nil
	}
	return &Command{Action: ActionAddProduct, Params: []string{client, product}}
}

func matchStartMeasurement(text string) *Command {
	m := startMeasureRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &Command{Action: ActionStartMeasurement, Params: []string{strings.TrimSpace(m[1])}}
}

func matchEndMeasurement(text string) *Command {
	if !strings.Contains(text, EndRecordingPhrase) {
		return nil
	}
	return &Command{Action: ActionEndMeasurement}
}

func matchListClients(text string) *Command {
	if !listClientsRe.MatchString(text) {
		return nil
	}
	return &Command{Action: ActionListClients}
}

func matchListProducts(text string) *Command {
	m := listProductsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &Command{Action: ActionListProducts, Params: []string{strings.TrimSpace(m[1])}}
}

func matchListMeasurements(text string) *Command {
	m := listMeasureRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &Command{Action: ActionListMeasurements, Params: []string{strings.TrimSpace(m[1])}}
}

func matchHelp(text string) *Command {
	if !helpRe.MatchString(text) {
		return nil
	}
	return &Command{Action: ActionHelp}
}

// matchers in priority order; the first match wins
var matchers = []matcher{
	matchAddClient,
	matchAddProduct,
	matchStartMeasurement,
	matchEndMeasurement,
	matchListClients,
	matchListProducts,
	matchListMeasurements,
	matchHelp,
}

// Parse maps utterance text to a Command, or nil when nothing matched.
// Callers answer nil with the "didn't understand" reply.
func Parse(text string) *Command {
	if utf8.RuneCountInString(text) > MaxInputLength {
		return &Command{Action: ActionHelp}
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, match := range matchers {
		if cmd := match(normalized); cmd != nil {
			return cmd
		}
	}
	return nil
}
