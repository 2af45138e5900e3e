// Package parse turns chat exports into normalized chat.Message sequences.
//
// Two formats are understood: the WhatsApp plain-text export and the Telegram
// Desktop JSON export. Parsing is best effort: lines or entries that cannot be
// given a valid timestamp are dropped, never reported as errors.
package parse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wrapped/internal/chat"
	"go.uber.org/zap"
)

// Format selects the parser used for an export.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatWhatsApp Format = "whatsapp"
	FormatTelegram Format = "telegram"
)

// ParseFormat converts a user-supplied format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatWhatsApp, FormatTelegram:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: want auto, whatsapp or telegram", s)
	}
}

// Parser parses exports. The zero value is not usable; construct with New.
type Parser struct {
	loc    *time.Location
	logger *zap.Logger
	newID  func() string
}

// Option configures a Parser.
type Option func(*Parser)

// WithLocation sets the location used for wall-clock times that carry no
// zone (WhatsApp lines, Telegram "date"). Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIDGenerator replaces the UUID generator used for messages without a
// source id.
func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		loc:    time.Local,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses data with a default Parser, choosing the format from name.
func Parse(name string, data []byte) []chat.Message {
	return New().Parse(name, data)
}

// Parse routes data to the Telegram parser when name ends in ".json" and to
// the WhatsApp parser otherwise. The result is returned unchanged.
func (p *Parser) Parse(name string, data []byte) []chat.Message {
	return p.ParseAs(DetectFormat(name, data), data)
}

// ParseAs parses data in the given format; FormatAuto sniffs the content.
func (p *Parser) ParseAs(format Format, data []byte) []chat.Message {
	switch format {
	case FormatTelegram:
		return p.ParseTelegram(data)
	case FormatWhatsApp:
		return p.ParseWhatsApp(string(data))
	default:
		return p.ParseAs(DetectFormat("", data), data)
	}
}

// ParseFile reads the export at path and parses it based on its file name.
func (p *Parser) ParseFile(path string) ([]chat.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return p.Parse(filepath.Base(path), data), nil
}

// DetectFormat picks the export format. A ".json" name (any case) is Telegram
// and any other name is WhatsApp. Without a name ("" or "-" for stdin) the
// content decides: a JSON object is Telegram.
func DetectFormat(name string, data []byte) Format {
	switch {
	case strings.EqualFold(filepath.Ext(name), ".json"):
		return FormatTelegram
	case name != "" && name != "-":
		return FormatWhatsApp
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatTelegram
	}
	return FormatWhatsApp
}
