package frontend

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// maxMultipartDepth bounds nested multipart recursion
const maxMultipartDepth = 5

var headerDecoder = &mime.WordDecoder{}

// extractTextFromMessage returns the text/plain content of an email message.
// Non-multipart bodies are returned whole; multipart bodies contribute only their text parts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	return extractText(textproto.MIMEHeader(msg.Header), msg.Body, 0)
}

func extractText(header textproto.MIMEHeader, body io.Reader, depth int) (string, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		// Not multipart, or nothing we can split on
		return readDecoded(header, body)
	}
	if depth >= maxMultipartDepth {
		return "", nil
	}

	var parts []string
	mr := multipart.NewReader(body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep what was read before the damage
			if len(parts) > 0 {
				break
			}
			return "", err
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		switch {
		case partType == "" || partType == "text/plain":
			if isAttachment(part.Header) {
				continue
			}
			text, err := readDecoded(part.Header, part)
			if err != nil {
				continue
			}
			parts = append(parts, text)
		case strings.HasPrefix(partType, "multipart/"):
			text, err := extractText(part.Header, part, depth+1)
			if err == nil && text != "" {
				parts = append(parts, text)
			}
		}
		// Skip other parts (attachments, html, etc.)
	}

	return strings.Join(parts, "\n"), nil
}

func isAttachment(h textproto.MIMEHeader) bool {
	disposition, _, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

// readDecoded reads body and undoes its Content-Transfer-Encoding
func readDecoded(h textproto.MIMEHeader, body io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding"))) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, newlineStripper{body})
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newlineStripper drops CR and LF so wrapped base64 decodes cleanly
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	for {
		c, err := n.r.Read(p)
		out := 0
		for _, b := range p[:c] {
			if b != '\r' && b != '\n' {
				p[out] = b
				out++
			}
		}
		if out > 0 || err != nil {
			return out, err
		}
	}
}

// decodeEncodedHeader decodes RFC 2047 encoded words such as =?UTF-8?B?...?=
func decodeEncodedHeader(value string) (string, error) {
	return headerDecoder.DecodeHeader(value)
}
