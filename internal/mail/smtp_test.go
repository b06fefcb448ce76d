package mail

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeSMTP atende uma única sessão e devolve o envelope recebido.
func fakeSMTP(t *testing.T) (string, int, <-chan []string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan []string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		var lines []string
		write("220 fake.pacuit.org ESMTP")
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				out <- lines
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if inData {
				if line == "." {
					inData = false
					write("250 queued")
					continue
				}
				lines = append(lines, line)
				continue
			}
			lines = append(lines, line)
			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				write("250 fake.pacuit.org")
			case strings.HasPrefix(line, "MAIL FROM"), strings.HasPrefix(line, "RCPT TO"):
				write("250 ok")
			case line == "DATA":
				inData = true
				write("354 go ahead")
			case line == "QUIT":
				write("221 bye")
				out <- lines
				return
			default:
				write("502 not implemented")
			}
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port, out
}

func TestSMTPMailerSend(t *testing.T) {
	host, port, session := fakeSMTP(t)

	mailer, err := NewSMTPMailer(SMTPConfig{Host: host, Port: port, From: "secretariat@pacuit.org"})
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	msg, err := IndividualConfirmation("maria@pacuit.org", "Maria", "PACUIT-INDIV-1")
	if err != nil {
		t.Fatalf("template: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mailer.Send(ctx, msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	lines := <-session
	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"MAIL FROM:<secretariat@pacuit.org>",
		"RCPT TO:<maria@pacuit.org>",
		"To: maria@pacuit.org",
		"Subject: PACUIT Membership Application PACUIT-INDIV-1",
		"Application ID: PACUIT-INDIV-1",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("session missing %q:\n%s", want, joined)
		}
	}
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 25, From: "a@pacuit.org"})
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	if err := mailer.Send(context.Background(), Message{To: "x@pacuit.org\r\nBcc: y@pacuit.org"}); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}

func TestConfirmationTemplates(t *testing.T) {
	msg, err := SubmissionConfirmation("ana@pacuit.org", "Ana", "PACUIT2025-1", "Quantum Pedagogy")
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if !strings.Contains(msg.Body, "Registration ID: PACUIT2025-1") || !strings.Contains(msg.Body, "Quantum Pedagogy") {
		t.Fatalf("unexpected body %q", msg.Body)
	}

	msg, err = InstitutionalConfirmation("dean@uni.edu", "Dean", "Uni of Manila", "PACUIT-INST-1")
	if err != nil {
		t.Fatalf("institutional: %v", err)
	}
	if !strings.HasPrefix(msg.Body, "Dear Dean,") || !strings.Contains(msg.Body, "Uni of Manila") {
		t.Fatalf("unexpected body %q", msg.Body)
	}
}
