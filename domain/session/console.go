package session

import (
	"context"
	"fmt"
	"io"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// ConsoleNotifier prints notifications for the CLI
type ConsoleNotifier struct {
	w io.Writer
}

// NewConsoleNotifier creates a notifier writing to w
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

// Notify implements export.Notifier
func (c *ConsoleNotifier) Notify(ctx context.Context, n export.Notification) {
	prefix := "•"
	if n.Severity == export.SeverityDestructive {
		prefix = "✗"
	}
	fmt.Fprintf(c.w, "%s %s: %s\n", prefix, n.Title, n.Description)

	logger.CtxDebug(ctx, n.Title, logger.LoggerInfo{
		ContextFunction: constant.CtxNotify,
		Data: map[string]interface{}{
			constant.DataKind: n.Severity,
		},
	})
}
