package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainEML = "From: Turo <noreply@turo.com>\r\n" +
	"To: host@example.com\r\n" +
	"Subject: Your trip is confirmed\r\n" +
	"Date: Mon, 15 Jan 2024 10:00:00 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Trip ID: TR-2024-001\r\n" +
	"Guest: John Smith\r\n" +
	"Total: $450.00\r\n"

func TestParseEML_Plain(t *testing.T) {
	msg, err := ParseEML(strings.NewReader(plainEML))
	require.NoError(t, err)

	assert.Equal(t, "Turo <noreply@turo.com>", msg.From)
	assert.Equal(t, "Your trip is confirmed", msg.Subject)
	assert.Contains(t, msg.Text, "Trip ID: TR-2024-001")
	assert.Empty(t, msg.HTML)
	assert.Equal(t, 2024, msg.ReceivedAt.Year())
	assert.Equal(t, "host@example.com", msg.Headers["To"])
}

func TestParseEML_MultipartEncodings(t *testing.T) {
	eml := "From: payments@stripe.com\r\n" +
		"Subject: =?UTF-8?Q?Payout_sent_=E2=9C=93?=\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Amount: $1,204.75 =\r\n" +
		"paid\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"PHA+QW1vdW50OiAkMSwyMDQuNzU8L3A+\r\n" +
		"--b1--\r\n"

	msg, err := ParseEML(strings.NewReader(eml))
	require.NoError(t, err)

	assert.Equal(t, "Payout sent ✓", msg.Subject)
	assert.Equal(t, "Amount: $1,204.75 paid", msg.Text)
	assert.Equal(t, "<p>Amount: $1,204.75</p>", msg.HTML)
}

func TestParseEML_Latin1(t *testing.T) {
	eml := "From: a@b.c\r\n" +
		"Subject: x\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"\r\n" +
		"Caf\xe9"

	msg, err := ParseEML(strings.NewReader(eml))
	require.NoError(t, err)
	assert.Equal(t, "Café", msg.Text)
}

func TestParseEML_NotAMessage(t *testing.T) {
	_, err := ParseEML(strings.NewReader("no headers here"))
	assert.Error(t, err)
}
