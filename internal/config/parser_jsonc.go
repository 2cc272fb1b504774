package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Discovery *jsoncDiscovery `json:"discovery"`
	Images    *jsoncImages    `json:"images"`
	Overlay   *jsoncOverlay   `json:"overlay"`
	Timeouts  *jsoncTimeouts  `json:"timeouts"`
	Log       *jsoncLog       `json:"log"`
}

type jsoncDiscovery struct {
	Dir    *string `json:"dir"`
	Prefix *string `json:"prefix"`
}

type jsoncImages struct {
	Dir        *string          `json:"dir"`
	Extensions *jsoncStringList `json:"extensions"`
}

type jsoncOverlay struct {
	Identifier *string `json:"identifier"`
	X          *int    `json:"x"`
	Y          *int    `json:"y"`
	MaxWidth   *int    `json:"max_width"`
	MaxHeight  *int    `json:"max_height"`
	Scaler     *string `json:"scaler"`
}

type jsoncTimeouts struct {
	ConnectMS *int `json:"connect_ms"`
	WriteMS   *int `json:"write_ms"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		parts := strings.Split(single, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
		*l = out
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings := payload.applyTo(&cfg)

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) []Warning {
	warnings := make([]Warning, 0)

	if payload.Discovery != nil {
		if payload.Discovery.Dir != nil {
			cfg.Discovery.Dir = strings.TrimSpace(*payload.Discovery.Dir)
		}
		if payload.Discovery.Prefix != nil {
			cfg.Discovery.Prefix = strings.TrimSpace(*payload.Discovery.Prefix)
		}
	}

	if payload.Images != nil {
		if payload.Images.Dir != nil {
			cfg.Images.Dir = strings.TrimSpace(*payload.Images.Dir)
		}
		if payload.Images.Extensions != nil {
			cfg.Images.Extensions = make([]string, 0, len(*payload.Images.Extensions))
			for _, ext := range *payload.Images.Extensions {
				normalized := normalizeExtension(ext)
				if normalized == "" {
					continue
				}
				if normalized != ext {
					warnings = append(warnings, Warning{Message: fmt.Sprintf("images.extensions: %q normalized to %q", ext, normalized)})
				}
				cfg.Images.Extensions = append(cfg.Images.Extensions, normalized)
			}
		}
	}

	if payload.Overlay != nil {
		if payload.Overlay.Identifier != nil {
			cfg.Overlay.Identifier = strings.TrimSpace(*payload.Overlay.Identifier)
		}
		if payload.Overlay.X != nil {
			cfg.Overlay.X = *payload.Overlay.X
		}
		if payload.Overlay.Y != nil {
			cfg.Overlay.Y = *payload.Overlay.Y
		}
		if payload.Overlay.MaxWidth != nil {
			cfg.Overlay.MaxWidth = *payload.Overlay.MaxWidth
		}
		if payload.Overlay.MaxHeight != nil {
			cfg.Overlay.MaxHeight = *payload.Overlay.MaxHeight
		}
		if payload.Overlay.Scaler != nil {
			cfg.Overlay.Scaler = strings.TrimSpace(*payload.Overlay.Scaler)
		}
	}

	if payload.Timeouts != nil {
		if payload.Timeouts.ConnectMS != nil {
			cfg.Timeouts.ConnectMS = *payload.Timeouts.ConnectMS
		}
		if payload.Timeouts.WriteMS != nil {
			cfg.Timeouts.WriteMS = *payload.Timeouts.WriteMS
		}
	}

	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
	}

	return warnings
}

// normalizeExtension lowercases ext and ensures a leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
