package share

import (
	"context"
	"fmt"
	"io"

	"medtrack/internal/domain/service"

	"github.com/pkg/errors"
)

// ConsoleSharer prints share requests instead of opening a share sheet.
// The CLI uses it where no device share API exists.
type ConsoleSharer struct {
	out io.Writer
}

var _ service.Sharer = (*ConsoleSharer)(nil)

func NewConsoleSharer(out io.Writer) *ConsoleSharer {
	return &ConsoleSharer{out: out}
}

func (c *ConsoleSharer) Share(_ context.Context, req *service.ShareRequest) error {
	if req.Title != "" {
		if _, err := fmt.Fprintln(c.out, req.Title); err != nil {
			return errors.Wrap(err, "failed to write share title")
		}
	}
	if req.Text != "" {
		if _, err := fmt.Fprintln(c.out, req.Text); err != nil {
			return errors.Wrap(err, "failed to write share text")
		}
	}
	if req.URL != "" {
		if _, err := fmt.Fprintf(c.out, "%s (%s)\n", req.URL, req.ContentType); err != nil {
			return errors.Wrap(err, "failed to write share url")
		}
	}

	return nil
}
