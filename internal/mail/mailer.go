package mail

import "context"

// Message é um e-mail de texto simples para um único destinatário.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer entrega e-mails de confirmação.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Noop descarta mensagens quando o SMTP não está configurado.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }
