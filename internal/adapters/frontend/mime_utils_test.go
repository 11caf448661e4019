package frontend

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readMail(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractText_Plain(t *testing.T) {
	msg := readMail(t, "Subject: hi\r\n\r\nplain body\r\n")
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	require.Equal(t, "plain body\r\n", text)
}

func TestExtractText_Base64(t *testing.T) {
	// "claim your prize" wrapped over two lines
	msg := readMail(t, "Content-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\nY2xhaW0geW91\r\nciBwcml6ZQ==\r\n")
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	require.Equal(t, "claim your prize", text)
}

func TestExtractText_NestedMultipart(t *testing.T) {
	raw := strings.Join([]string{
		`Content-Type: multipart/mixed; boundary="outer"`,
		``,
		`--outer`,
		`Content-Type: multipart/alternative; boundary="inner"`,
		``,
		`--inner`,
		`Content-Type: text/plain; charset=utf-8`,
		`Content-Transfer-Encoding: quoted-printable`,
		``,
		`Win a free =`,
		`prize now`,
		`--inner`,
		`Content-Type: text/html`,
		``,
		`<p>Win a free prize now</p>`,
		`--inner--`,
		`--outer`,
		`Content-Type: text/plain`,
		`Content-Disposition: attachment; filename="notes.txt"`,
		``,
		`attached notes`,
		`--outer`,
		`Content-Type: application/pdf`,
		``,
		`%PDF-1.4`,
		`--outer--`,
		``,
	}, "\r\n")

	text, err := extractTextFromMessage(readMail(t, raw))
	require.NoError(t, err)
	require.Equal(t, "Win a free prize now", text)
}

func TestExtractText_MultipartWithoutText(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=b\r\n\r\n--b\r\nContent-Type: image/png\r\n\r\nxx\r\n--b--\r\n"
	text, err := extractTextFromMessage(readMail(t, raw))
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestDecodeEncodedHeader(t *testing.T) {
	s, err := decodeEncodedHeader("=?UTF-8?B?V2luIGEgcHJpemU=?=")
	require.NoError(t, err)
	require.Equal(t, "Win a prize", s)

	s, err = decodeEncodedHeader("plain subject")
	require.NoError(t, err)
	require.Equal(t, "plain subject", s)
}
