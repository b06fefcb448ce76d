package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier envia alertas para a equipe organizadora.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Message struct {
	Title    string
	Text     string
	Severity string
}

// Noop descarta alertas quando nenhum canal está configurado.
type Noop struct{}

func (Noop) Notify(context.Context, Message) error { return nil }

type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier devolve Noop quando o webhook não foi configurado.
func NewSlackNotifier(webhookURL string, client *http.Client) Notifier {
	if webhookURL == "" {
		return Noop{}
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

func (s *SlackNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(map[string]any{"text": formatSlackMessage(msg)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack: notificação falhou com status %d", resp.StatusCode)
	}
	return nil
}

// NewApplication monta o alerta de uma nova inscrição recebida.
func NewApplication(kind, id, applicant, email string) Message {
	return Message{
		Title:    "Nova inscrição: " + kind,
		Text:     fmt.Sprintf("%s (%s) enviou %s", applicant, email, id),
		Severity: "info",
	}
}

func formatSlackMessage(msg Message) string {
	emoji := ":information_source:"
	switch msg.Severity {
	case "warning":
		emoji = ":warning:"
	case "critical":
		emoji = ":rotating_light:"
	}
	if msg.Title != "" {
		return emoji + " *" + msg.Title + "*\n" + msg.Text
	}
	return emoji + " " + msg.Text
}
