package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{from: "shop@example.com", dialer: d}

	err := s.Send(context.Background(), []string{"a@example.com", "b@example.com"}, "Low stock", "<p>hi</p>")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"shop@example.com"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, d.sent[0].GetHeader("To"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>hi</p>")
}

func TestSMTPSenderSkipsEmptyRecipients(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{dialer: d}
	require.NoError(t, s.Send(context.Background(), nil, "x", "y"))
	assert.Empty(t, d.sent)
}

func TestSMTPSenderWrapsError(t *testing.T) {
	s := &SMTPSender{dialer: &recordingDialer{err: errors.New("refused")}}
	err := s.Send(context.Background(), []string{"a@example.com"}, "x", "y")
	assert.ErrorContains(t, err, "refused")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	s := New(Config{})
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), []string{"a@example.com"}, "x", "y"))
}
