package doctor

import (
	"context"
	"fmt"
)

// Minimum terminal size for a readable page with a centered dialog.
const (
	MinWidth  = 40
	MinHeight = 12
)

// SizeFunc reports the size of the terminal on a file descriptor.
type SizeFunc func(fd int) (width, height int, err error)

// TerminalCheck verifies that output goes to a terminal large enough to host
// the page.
type TerminalCheck struct {
	fd         int
	isTerminal func(fd int) bool
	size       SizeFunc
}

// NewTerminalCheck creates a terminal check for fd.
func NewTerminalCheck(fd int, isTerminal func(fd int) bool, size SizeFunc) *TerminalCheck {
	return &TerminalCheck{fd: fd, isTerminal: isTerminal, size: size}
}

func (c *TerminalCheck) Name() string {
	return "Terminal"
}

func (c *TerminalCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.isTerminal(c.fd) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Interactive",
			Status: StatusWarn,
			Detail: "stdout is not a terminal; use 'lightbox snapshot' for static output",
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "Interactive",
		Status: StatusPass,
	})

	w, h, err := c.size(c.fd)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Size",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	item := CheckItem{
		Label:  "Size",
		Status: StatusPass,
		Detail: fmt.Sprintf("%dx%d", w, h),
	}
	if w < MinWidth || h < MinHeight {
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("%dx%d is below %dx%d; dialogs may be clipped", w, h, MinWidth, MinHeight)
	}
	result.Items = append(result.Items, item)

	return result
}
