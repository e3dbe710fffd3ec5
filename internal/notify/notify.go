// Package notify delivers new-date announcements to chat services.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screening_notifier/internal/model"
)

// DefaultHeader opens every announcement.
const DefaultHeader = "🎬 **New screening dates are open!**"

// Notifier delivers one announcement for a batch of new dates.
type Notifier interface {
	Send(ctx context.Context, dates []model.DateID) error
}

// FormatMessage renders the header followed by one "- YYYY-MM-DD" line per
// date, in ascending order.
func FormatMessage(header string, dates []model.DateID) string {
	sorted := model.NewDateSet(dates...).Sorted()

	var b strings.Builder
	b.WriteString(header)
	for _, d := range sorted {
		b.WriteString("\n- ")
		b.WriteString(d.Display())
	}
	return b.String()
}

// Multi sends to every channel and reports all failures together.
type Multi []Notifier

// Send delivers to each notifier in turn; one failing channel does not stop the rest.
func (m Multi) Send(ctx context.Context, dates []model.DateID) error {
	var errs []error
	for i, n := range m {
		if err := n.Send(ctx, dates); err != nil {
			errs = append(errs, fmt.Errorf("channel %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
