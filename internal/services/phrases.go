package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atelierbook/atelier-backend/internal/models"
)

// Fixed replies. Every user-visible outcome is a sentence, never an
// error code: the transport is a voice dialogue.
const (
	// MsgDidNotUnderstand is the reply when no command template matched
	MsgDidNotUnderstand = `Не поняла команду. Скажите "помощь" чтобы узнать что я умею.`

	// MsgGenericError is the reply for infrastructure failures; details
	// go to the log, never to the user
	MsgGenericError = `Произошла ошибка. Попробуйте ещё раз.`

	// MsgStartRecordingFirst is the reply to dictation or end-of-recording
	// without an active recording
	MsgStartRecordingFirst = `Сначала начните запись замеров командой "запоминай замеры для [изделие]".`
)

const helpText = `Записная книжка швеи. Я умею:
— Запоминать клиентов: "запомни нового клиента Вася"
— Создавать изделия: "создай для Васи изделие куртка"
— Записывать замеры: "запоминай замеры для куртка", затем назовите параметры и "конец записи"
— Перечислять клиентов: "перечисли клиентов"
— Показывать изделия клиента: "перечисли изделия для Васи"
— Показывать замеры изделия: "перечисли замеры для куртка"`

// HelpText returns the static description of supported phrasings
func HelpText() string {
	return helpText
}

// Plural picks the word form for a count: 1 -> one, 2-4 -> few,
// 0 or 5+ -> many.
func Plural(count int, one, few, many string) string {
	switch {
	case count == 1:
		return one
	case count >= 2 && count <= 4:
		return few
	default:
		return many
	}
}

// renderDate formats dates the way replies read them out
func renderDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// renderPairs renders measurement data as "label: value" pairs joined
// with ", ". Labels are sorted so the sentence is deterministic.
func renderPairs(data map[string]string) string {
	labels := make([]string, 0, len(data))
	for label := range data {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	pairs := make([]string, 0, len(labels))
	for _, label := range labels {
		pairs = append(pairs, fmt.Sprintf("%s: %s", label, data[label]))
	}
	return strings.Join(pairs, ", ")
}

// renderClientList names all clients and appends the count sentence
func renderClientList(clients []*models.Client) string {
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.Name)
	}
	n := len(clients)
	return fmt.Sprintf("Ваши клиенты: %s. Всего %d %s.",
		strings.Join(names, ", "), n, Plural(n, "клиент", "клиента", "клиентов"))
}

// renderProductList names a client's products and appends the count sentence
func renderProductList(client *models.Client, products []*models.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	n := len(products)
	return fmt.Sprintf("Изделия клиента \"%s\": %s. Всего %d %s.",
		client.Name, strings.Join(names, ", "), n, Plural(n, "изделие", "изделия", "изделий"))
}

// renderMeasurementList renders each record as
// "Замер #<version> от <date>: label:value label:value" joined by ". ".
func renderMeasurementList(product *models.Product, measurements []*models.Measurement) string {
	clientName := ""
	if product.Client != nil {
		clientName = product.Client.Name
	}

	entries := make([]string, 0, len(measurements))
	for _, m := range measurements {
		data, err := m.DataMap()
		if err != nil {
			// Opaque text that does not deserialize is skipped rather
			// than failing the whole listing
			continue
		}
		labels := make([]string, 0, len(data))
		for label := range data {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		params := make([]string, 0, len(labels))
		for _, label := range labels {
			params = append(params, fmt.Sprintf("%s:%s", label, data[label]))
		}
		entries = append(entries, fmt.Sprintf("Замер #%d от %s: %s",
			m.Version, renderDate(m.Date), strings.Join(params, " ")))
	}

	return fmt.Sprintf("Замеры изделия \"%s\" (клиент: %s): %s",
		product.Name, clientName, strings.Join(entries, ". "))
}
