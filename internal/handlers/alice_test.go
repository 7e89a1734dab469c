package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/dialog"
	"github.com/atelierbook/atelier-backend/internal/handlers"
	"github.com/atelierbook/atelier-backend/internal/models"
	"github.com/atelierbook/atelier-backend/internal/routes"
	"github.com/atelierbook/atelier-backend/internal/services"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

func newTestApp(t *testing.T, store storage.Store) (*fiber.App, *dialog.MemoryStore) {
	t.Helper()
	dialogStore := dialog.NewMemoryStore()
	skill := services.NewSkillService(store, dialogStore)
	app := fiber.New()
	routes.SetupRoutes(app, store, skill, dialogStore)
	return app, dialogStore
}

// turn posts one webhook turn and returns the decoded reply envelope
func turn(t *testing.T, app *fiber.App, sessionID, utterance string, newSession bool) handlers.AliceResponse {
	t.Helper()

	var req handlers.AliceRequest
	req.Request.Command = strings.ToLower(utterance)
	req.Request.OriginalUtterance = utterance
	req.Request.Type = "SimpleUtterance"
	req.Session.SessionID = sessionID
	req.Session.MessageID = 1
	req.Session.SkillID = "skill-1"
	req.Session.UserID = "user-1"
	req.Session.New = newSession
	req.Version = "1.0"

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq := httptest.NewRequest("POST", "/webhook/alice", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var envelope handlers.AliceResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestWebhook_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, storage.NewMemoryStore())

	envelope := turn(t, app, "s1", "привет как дела", true)
	if envelope.Response.Text != services.MsgDidNotUnderstand {
		t.Errorf("text = %q, want didn't-understand reply", envelope.Response.Text)
	}
	if envelope.Response.EndSession {
		t.Error("end_session must always be false")
	}
	if envelope.Session.SessionID != "s1" || envelope.Session.SkillID != "skill-1" || envelope.Session.UserID != "user-1" {
		t.Errorf("session identity not echoed: %+v", envelope.Session)
	}
	if envelope.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", envelope.Version)
	}
}

func TestWebhook_FullVoiceFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	app, _ := newTestApp(t, store)
	const sessionID = "s1"

	envelope := turn(t, app, sessionID, "запомни нового клиента вася", true)
	if !strings.Contains(envelope.Response.Text, "успешно записан") {
		t.Fatalf("add client reply = %q", envelope.Response.Text)
	}

	envelope = turn(t, app, sessionID, "создай для вася изделие куртка", false)
	if !strings.Contains(envelope.Response.Text, "успешно создано") {
		t.Fatalf("add product reply = %q", envelope.Response.Text)
	}

	envelope = turn(t, app, sessionID, "запоминай замеры для куртка", false)
	if !strings.Contains(envelope.Response.Text, "Начинаю запись замеров") {
		t.Fatalf("start reply = %q", envelope.Response.Text)
	}

	// While collecting, utterances are dictation, not commands
	envelope = turn(t, app, sessionID, "талия 90, бедра 95", false)
	if !strings.Contains(envelope.Response.Text, "Записала") {
		t.Fatalf("dictation reply = %q", envelope.Response.Text)
	}
	envelope = turn(t, app, sessionID, "перечисли клиентов", false)
	if !strings.Contains(envelope.Response.Text, "Записала") {
		t.Fatalf("commands must be bypassed while collecting, got %q", envelope.Response.Text)
	}

	envelope = turn(t, app, sessionID, "конец записи", false)
	if !strings.Contains(envelope.Response.Text, "Замер #1") {
		t.Fatalf("end reply = %q", envelope.Response.Text)
	}

	product, err := store.GetProductByName("куртка")
	if err != nil {
		t.Fatalf("GetProductByName: %v", err)
	}
	measurements, err := store.GetMeasurementsByProduct(product.ID)
	if err != nil || len(measurements) != 1 {
		t.Fatalf("measurements = %v, err = %v", measurements, err)
	}
	data, err := measurements[0].DataMap()
	if err != nil {
		t.Fatalf("DataMap: %v", err)
	}
	// "перечисли клиентов" was dictated mid-collection and dropped by
	// the line parser; the real lines made it through
	if data["талия"] != "90" || data["бедра"] != "95" {
		t.Errorf("data = %v", data)
	}
}

func TestWebhook_EndWithoutStart(t *testing.T) {
	app, _ := newTestApp(t, storage.NewMemoryStore())

	envelope := turn(t, app, "s1", "конец записи", true)
	if envelope.Response.Text != services.MsgStartRecordingFirst {
		t.Errorf("text = %q, want start-recording-first message", envelope.Response.Text)
	}
}

func TestWebhook_NewSessionDiscardsState(t *testing.T) {
	store := storage.NewMemoryStore()
	app, dialogStore := newTestApp(t, store)
	const sessionID = "s1"

	turn(t, app, sessionID, "запомни нового клиента вася", true)
	turn(t, app, sessionID, "создай для вася изделие куртка", false)
	turn(t, app, sessionID, "запоминай замеры для куртка", false)
	turn(t, app, sessionID, "талия 90", false)

	// The platform restarts the session: the lingering collecting
	// state must be discarded and commands must work again
	envelope := turn(t, app, sessionID, "перечисли клиентов", true)
	if !strings.Contains(envelope.Response.Text, "Ваши клиенты") {
		t.Errorf("after new session, commands should parse again, got %q", envelope.Response.Text)
	}
	if _, err := dialogStore.Get(context.Background(), sessionID); err == nil {
		t.Error("dialog state should be gone after a new session")
	}
}

// failingStore simulates an unreachable record store for one operation
type failingStore struct {
	storage.Store
}

func (f failingStore) GetAllClients() ([]*models.Client, error) {
	return nil, errors.New("connection refused")
}

func TestWebhook_InfrastructureFailure(t *testing.T) {
	app, _ := newTestApp(t, failingStore{storage.NewMemoryStore()})

	// The turn still produces a well-formed envelope with a
	// conversational reply, never a raw error
	envelope := turn(t, app, "s1", "перечисли клиентов", true)
	if envelope.Response.Text != services.MsgGenericError {
		t.Errorf("text = %q, want generic error reply", envelope.Response.Text)
	}
	if envelope.Response.EndSession {
		t.Error("end_session must stay false on failures")
	}
}

func TestWebhook_Probe(t *testing.T) {
	app, _ := newTestApp(t, storage.NewMemoryStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/webhook/alice", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}
