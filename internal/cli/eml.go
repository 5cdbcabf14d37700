package cli

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/JonMunkholm/hostledger/internal/core"
	"golang.org/x/net/html/charset"
)

// maxPartDepth bounds nested multipart recursion.
const maxPartDepth = 8

var headerDecoder = &mime.WordDecoder{CharsetReader: charset.NewReaderLabel}

// ParseEML reads an RFC 5322 message into a core.RawMessage. The first
// text/plain and text/html parts found become Text and HTML.
func ParseEML(r io.Reader) (core.RawMessage, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return core.RawMessage{}, fmt.Errorf("read message: %w", err)
	}

	out := core.RawMessage{
		From:    decodeHeader(msg.Header.Get("From")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Headers: make(map[string]string, len(msg.Header)),
	}
	for k, v := range msg.Header {
		out.Headers[k] = decodeHeader(strings.Join(v, ", "))
	}
	if date, err := msg.Header.Date(); err == nil {
		out.ReceivedAt = date
	}

	err = walkPart(&out, msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
	if err != nil {
		return core.RawMessage{}, err
	}
	return out, nil
}

func decodeHeader(v string) string {
	decoded, err := headerDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

func walkPart(out *core.RawMessage, contentType, encoding string, body io.Reader, depth int) error {
	if depth > maxPartDepth {
		return fmt.Errorf("message nests more than %d multipart levels", maxPartDepth)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextRawPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read multipart: %w", err)
			}
			if err := walkPart(out, part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, depth+1); err != nil {
				return err
			}
		}
	}

	if mediaType != "text/plain" && mediaType != "text/html" {
		return nil
	}
	if (mediaType == "text/plain" && out.Text != "") || (mediaType == "text/html" && out.HTML != "") {
		return nil
	}

	text, err := readText(decodeTransfer(body, encoding), params["charset"])
	if err != nil {
		return fmt.Errorf("read %s part: %w", mediaType, err)
	}
	if mediaType == "text/html" {
		out.HTML = text
	} else {
		out.Text = text
	}
	return nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

func readText(r io.Reader, label string) (string, error) {
	if label != "" && !strings.EqualFold(label, "utf-8") && !strings.EqualFold(label, "us-ascii") {
		converted, err := charset.NewReaderLabel(label, r)
		if err == nil {
			r = converted
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return core.SanitizeText(data), nil
}
