package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/atelierbook/atelier-backend/internal/dialog"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

// Kind tags the outcome of an action handler so callers and tests can
// branch on what happened without substring-matching the sentence.
type Kind int

const (
	KindOK         Kind = iota
	KindNotFound        // referenced client/product does not exist
	KindDuplicate       // create hit a name-uniqueness constraint
	KindNoDialog        // dictation/end received with no active recording
	KindEmptyParse      // end of recording with nothing recognized
)

// Result is a handler outcome: the kind plus the sentence spoken back.
// Domain errors are Results, not Go errors; only infrastructure
// failures travel as errors.
type Result struct {
	Kind Kind
	Text string
}

func ok(text string) Result {
	return Result{Kind: KindOK, Text: text}
}

// SkillService implements the voice-command actions over the record
// store and the dialog state store
type SkillService struct {
	store  storage.Store
	dialog dialog.Store
}

// NewSkillService creates a new skill service
func NewSkillService(store storage.Store, dialogStore dialog.Store) *SkillService {
	return &SkillService{store: store, dialog: dialogStore}
}

// AddClient records a new client by name
func (s *SkillService) AddClient(name string) (Result, error) {
	client, err := s.store.CreateClient(name)
	if errors.Is(err, storage.ErrDuplicate) {
		return Result{
			Kind: KindDuplicate,
			Text: fmt.Sprintf("Клиент \"%s\" уже существует в записной книжке.", name),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return ok(fmt.Sprintf("Клиент \"%s\" успешно записан!", client.Name)), nil
}

// AddProduct creates a product for an existing client
func (s *SkillService) AddProduct(clientName, productName string) (Result, error) {
	client, err := s.store.GetClientByName(clientName)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{
			Kind: KindNotFound,
			Text: fmt.Sprintf("Клиент \"%s\" не найден. Сначала добавьте клиента командой \"запомни нового клиента %s\".",
				clientName, clientName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	_, err = s.store.CreateProduct(client.ID, productName)
	if errors.Is(err, storage.ErrDuplicate) {
		return Result{
			Kind: KindDuplicate,
			Text: fmt.Sprintf("Изделие \"%s\" уже существует для клиента \"%s\".", productName, clientName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return ok(fmt.Sprintf("Изделие \"%s\" для клиента \"%s\" успешно создано!", productName, clientName)), nil
}

// StartMeasurement opens a measurement recording for the conversation.
// Any prior dialog state for the session is replaced.
func (s *SkillService) StartMeasurement(ctx context.Context, sessionID, productName string) (Result, error) {
	product, err := s.store.GetProductByName(productName)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{
			Kind: KindNotFound,
			Text: fmt.Sprintf("Изделие \"%s\" не найдено. Сначала создайте его командой \"создай для [клиент] изделие %s\".",
				productName, productName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	clientName := ""
	if product.Client != nil {
		clientName = product.Client.Name
	}

	state := &dialog.State{
		Mode:        dialog.ModeCollecting,
		ProductName: product.Name,
		ClientName:  clientName,
	}
	if err := s.dialog.Set(ctx, sessionID, state); err != nil {
		return Result{}, err
	}

	return ok(fmt.Sprintf("Начинаю запись замеров для изделия \"%s\" клиента \"%s\". "+
		"Называйте замеры в формате \"талия 90, бедра 95\". Когда закончите, скажите \"конец записи\".",
		product.Name, clientName)), nil
}

// RecordDictation appends one dictated fragment to the active recording
func (s *SkillService) RecordDictation(ctx context.Context, sessionID, fragment string) (Result, error) {
	state, err := s.dialog.Get(ctx, sessionID)
	if errors.Is(err, dialog.ErrNoState) {
		return Result{Kind: KindNoDialog, Text: MsgStartRecordingFirst}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if state.Mode != dialog.ModeCollecting || state.ProductName == "" {
		return Result{Kind: KindNoDialog, Text: MsgStartRecordingFirst}, nil
	}

	state.Append(fragment)
	if err := s.dialog.Set(ctx, sessionID, state); err != nil {
		return Result{}, err
	}

	return ok(fmt.Sprintf("Записала: \"%s\". Продолжайте называть замеры или скажите \"конец записи\" для завершения.",
		fragment)), nil
}

// EndMeasurement closes the active recording, parses the accumulated
// text and persists a new measurement version. The dialog state is
// cleared on every exit path past the no-dialog check, including
// failures, so a conversation cannot get stuck collecting.
func (s *SkillService) EndMeasurement(ctx context.Context, sessionID string) (Result, error) {
	state, err := s.dialog.Get(ctx, sessionID)
	if errors.Is(err, dialog.ErrNoState) {
		return Result{Kind: KindNoDialog, Text: MsgStartRecordingFirst}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if state.Mode != dialog.ModeCollecting || state.ProductName == "" {
		return Result{Kind: KindNoDialog, Text: MsgStartRecordingFirst}, nil
	}

	s.clearState(ctx, sessionID)

	if state.Text == "" {
		return Result{
			Kind: KindEmptyParse,
			Text: "Нет записанных замеров. Начните заново командой \"запоминай замеры для [изделие]\".",
		}, nil
	}

	data := ParseMeasurementLines(state.Text)
	if len(data) == 0 {
		return Result{
			Kind: KindEmptyParse,
			Text: "Не удалось распознать замеры. Попробуйте формат \"талия 90, бедра 95\".",
		}, nil
	}

	// Re-resolve by name: the product may have been deleted while the
	// dictation was in progress
	product, err := s.store.GetProductByName(state.ProductName)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{
			Kind: KindNotFound,
			Text: fmt.Sprintf("Изделие \"%s\" не найдено.", state.ProductName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	count, err := s.store.CountMeasurementsByProduct(product.ID)
	if err != nil {
		return Result{}, err
	}
	version := int(count) + 1

	raw, err := json.Marshal(data)
	if err != nil {
		return Result{}, err
	}
	measurement, err := s.store.CreateMeasurement(product.ID, version, string(raw))
	if err != nil {
		return Result{}, err
	}

	return ok(fmt.Sprintf("Замер #%d для изделия \"%s\" успешно сохранён! Записанные параметры: %s.",
		measurement.Version, product.Name, renderPairs(data))), nil
}

// clearState drops the dialog state; a failing delete is logged but
// never surfaced, the reply to the user matters more
func (s *SkillService) clearState(ctx context.Context, sessionID string) {
	if err := s.dialog.Delete(ctx, sessionID); err != nil {
		log.Printf("Failed to clear dialog state for session %s: %v", sessionID, err)
	}
}

// ListClients names every client in the notebook
func (s *SkillService) ListClients() (Result, error) {
	clients, err := s.store.GetAllClients()
	if err != nil {
		return Result{}, err
	}
	if len(clients) == 0 {
		return ok("Записная книжка пуста. Добавьте первого клиента командой \"запомни нового клиента [имя]\"."), nil
	}
	return ok(renderClientList(clients)), nil
}

// ListProducts names a client's products
func (s *SkillService) ListProducts(clientName string) (Result, error) {
	client, err := s.store.GetClientByName(clientName)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{
			Kind: KindNotFound,
			Text: fmt.Sprintf("Клиент \"%s\" не найден.", clientName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	products, err := s.store.GetProductsByClient(client.ID)
	if err != nil {
		return Result{}, err
	}
	if len(products) == 0 {
		return ok(fmt.Sprintf("У клиента \"%s\" пока нет изделий. Создайте первое командой \"создай для %s изделие [название]\".",
			client.Name, client.Name)), nil
	}
	return ok(renderProductList(client, products)), nil
}

// ListMeasurements reads out every measurement version of a product
func (s *SkillService) ListMeasurements(productName string) (Result, error) {
	product, err := s.store.GetProductByName(productName)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{
			Kind: KindNotFound,
			Text: fmt.Sprintf("Изделие \"%s\" не найдено.", productName),
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	measurements, err := s.store.GetMeasurementsByProduct(product.ID)
	if err != nil {
		return Result{}, err
	}
	if len(measurements) == 0 {
		return ok(fmt.Sprintf("У изделия \"%s\" пока нет замеров. Начните запись командой \"запоминай замеры для %s\".",
			product.Name, product.Name)), nil
	}
	return ok(renderMeasurementList(product, measurements)), nil
}

// Help returns the static help text
func (s *SkillService) Help() (Result, error) {
	return ok(HelpText()), nil
}
