package qr

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	"pet-guardian/internal/platform/logger"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 300

	dataImagePrefix = "data:image/"
	pngDataPrefix   = "data:image/png;base64,"
)

var (
	ErrNotDataURI  = errors.New("not a base64 data uri")
	ErrEmptyTarget = errors.New("nothing to encode")
)

// Encoder genera un PNG cuadrado de size px para content.
type Encoder func(content string, size int) ([]byte, error)

// EncodePNG usa go-qrcode con corrección media.
func EncodePNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

// Renderer decide qué imagen mostrar para el QR de una mascota.
type Renderer struct {
	encode Encoder
	size   int
	log    logger.Logger
}

func NewRenderer(log logger.Logger) *Renderer {
	return NewRendererWithEncoder(EncodePNG, log)
}

func NewRendererWithEncoder(enc Encoder, log logger.Logger) *Renderer {
	if enc == nil {
		enc = EncodePNG
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Renderer{encode: enc, size: DefaultSize, log: log}
}

// Resolve devuelve la imagen a mostrar:
//   - stored ya es data:image/... => tal cual
//   - stored es una URL http(s) => se codifica esa URL
//   - cualquier otra cosa => se codifica profileURL
//
// Si la generación falla se devuelve stored, aunque no sea renderizable.
func (r *Renderer) Resolve(stored, profileURL string) string {
	stored = strings.TrimSpace(stored)
	if strings.HasPrefix(stored, dataImagePrefix) {
		return stored
	}

	target := strings.TrimSpace(profileURL)
	if looksLikeURL(stored) {
		target = stored
	}
	if target == "" {
		r.log.Warn("qr generation skipped", map[string]any{"error": ErrEmptyTarget})
		return stored
	}

	png, err := r.encode(target, r.size)
	if err != nil || len(png) == 0 {
		r.log.Warn("qr generation failed, using stored value", map[string]any{"error": err})
		return stored
	}
	return pngDataPrefix + base64.StdEncoding.EncodeToString(png)
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ProfileURL es la URL pública canónica: <base>/pet/<id>.
func ProfileURL(base, petID string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/pet/" + url.PathEscape(strings.TrimSpace(petID))
}

// DecodeDataURI separa un data URI base64 en mime + bytes.
func DecodeDataURI(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrNotDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrNotDataURI, err)
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime, raw, nil
}
