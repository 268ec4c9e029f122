package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

func TestNewPicksImplementation(t *testing.T) {
	log := observability.NewNopLogger()
	assert.IsType(t, &LogMailer{}, New(config.SMTPConfig{}, log))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, log))
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("no-reply@goticket.local", "a@b.c", "Reset\r\nBcc: x@y.z", "line1\nline2",
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Contains(t, msg, "Subject: ResetBcc: x@y.z\r\n")
	assert.True(t, strings.HasSuffix(msg, "line1\r\nline2"))
	assert.Contains(t, msg, "To: a@b.c\r\n")
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, NewLogMailer(observability.NewNopLogger()).Send(context.Background(), "a@b.c", "hi", "secret"))
}
