package util

import (
	"encoding/base64"
	"strings"
)

// SniffImageMIME detects the MIME type of an encoded image from its magic
// bytes. ok is false when the bytes are none of the formats the detection
// model's decoder accepts.
func SniffImageMIME(b []byte) (mime string, ok bool) {
	switch {
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "image/jpeg", true
	case len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A:
		return "image/png", true
	case len(b) >= 2 && b[0] == 'B' && b[1] == 'M':
		return "image/bmp", true
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp", true
	case len(b) >= 4 && (string(b[0:4]) == "II*\x00" || string(b[0:4]) == "MM\x00*"):
		return "image/tiff", true
	}
	return "", false
}

// DecodeBase64MaybeDataURL decodes a base64 payload. If it is a data: URI the
// MIME type from the prefix is returned as well.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx] // "<mime>;base64"
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	// standard base64 first, then URL-safe as a fallback
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	} else {
		return nil, "", err
	}
}
