package adapters

import (
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/brettbedarf/vtree"
	"github.com/brettbedarf/vtree/internal/util"
)

// OSOpener opens files with the platform's default handler
type OSOpener struct {
	// command builds the handler invocation; swapped in tests
	command func(path string) *exec.Cmd
}

func NewOSOpener() *OSOpener {
	return &OSOpener{command: defaultOpenCommand}
}

func defaultOpenCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// Open starts the handler and reports whether it could be launched. The
// handler process is not waited on.
func (o *OSOpener) Open(path string) bool {
	logger := util.GetLogger("Opener.Open")

	cmd := o.command(path)
	if err := cmd.Start(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to start default handler")
		return false
	}
	go func() { _ = cmd.Wait() }()
	logger.Debug().Str("path", path).Str("handler", cmd.Path).Msg("Opened file")
	return true
}

var _ vtree.Opener = (*OSOpener)(nil)

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

var _ vtree.ClipboardWriter = SystemClipboard{}
