package notifier

import (
	"context"
	"fmt"
	"io"
)

// WriterNotifier prints reports instead of sending them, for dry runs
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Send(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(n.w, text)
	return err
}
