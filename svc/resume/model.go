package resume

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Border styles for the photo frame.
const (
	BorderSquare   = "square"
	BorderCircle   = "circle"
	BorderSquircle = "squircle"
)

// Style defaults. Resetting to them never requires a paid tier.
const (
	DefaultBorderStyle = BorderSquircle
	DefaultAccentColor = "#000000"
)

// Resume is one stored résumé. Content is the editor's form state and is
// opaque to this package.
type Resume struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"-"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	BorderStyle string          `json:"borderStyle"`
	AccentColor string          `json:"accentColor"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsDefaultStyle reports whether the given style matches the defaults.
func IsDefaultStyle(borderStyle, accentColor string) bool {
	return (borderStyle == "" || borderStyle == DefaultBorderStyle) &&
		(accentColor == "" || strings.EqualFold(accentColor, DefaultAccentColor))
}

// CreateInput is the payload for creating a résumé.
type CreateInput struct {
	Title   string          `json:"title" validate:"required,max=120"`
	Content json.RawMessage `json:"content"`
}

// StyleInput is the payload for restyling a résumé. Empty fields keep the current value.
type StyleInput struct {
	BorderStyle string `json:"borderStyle" validate:"omitempty,oneof=square circle squircle"`
	AccentColor string `json:"accentColor" validate:"omitempty,hexcolor"`
}
