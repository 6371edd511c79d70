// Package shell is the interactive front end: it reads commands, keeps the
// current selection and prints results and rejections.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brettbedarf/vtree"
	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
	"github.com/brettbedarf/vtree/server"
)

const prompt = "vtree> "

var errNoSelection = errors.New("nothing selected; use 'select <path>'")

// REPL holds the state of the interactive session
type REPL struct {
	sess     *server.Session
	reader   *bufio.Reader
	out      io.Writer
	clip     vtree.ClipboardWriter
	now      func() time.Time
	selected uint64 // NodeID of the selected node; 0 for none
}

// New creates a REPL over sess. clip may be nil to disable 'path --clip'.
func New(sess *server.Session, in io.Reader, out io.Writer, clip vtree.ClipboardWriter) *REPL {
	return &REPL{
		sess:   sess,
		reader: bufio.NewReader(in),
		out:    out,
		clip:   clip,
		now:    time.Now,
	}
}

// Run reads commands until 'quit' or end of input
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, "vtree shell. Type 'help' for available commands, 'quit' to exit")
	for {
		fmt.Fprint(r.out, prompt)
		input, err := r.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" && !r.handleCommand(input) {
			return nil
		}
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// handleCommand runs one command line; returns false to stop the loop
func (r *REPL) handleCommand(input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		r.printHelp()

	case "quit", "exit":
		return false

	case "tree":
		r.report(r.sess.WriteTree(r.out, r.selected))

	case "select", "cd":
		r.cmdSelect(arg)

	case "path":
		r.cmdPath(arg)

	case "mkdir":
		r.cmdCreate(arg, false)

	case "touch":
		r.cmdCreate(arg, true)

	case "rm":
		r.cmdDelete()

	case "rename":
		r.cmdRename(arg)

	case "copy":
		r.withSelection(func(n *filesystem.Node) error {
			if err := r.sess.CopyByID(n.NodeID()); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "copied %s\n", r.sess.Path(n))
			return nil
		})

	case "drag":
		r.withSelection(func(n *filesystem.Node) error {
			if err := r.sess.DragByID(n.NodeID()); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "dragging %s\n", r.sess.Path(n))
			return nil
		})

	case "paste":
		r.withSelection(func(target *filesystem.Node) error {
			n, err := r.sess.PasteByID(target.NodeID())
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "pasted %s\n", r.sess.DisplayPath(n))
			return nil
		})

	case "drop":
		r.withSelection(func(target *filesystem.Node) error {
			n, err := r.sess.DropByID(target.NodeID())
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "dropped %s\n", r.sess.DisplayPath(n))
			return nil
		})

	case "search", "find":
		r.cmdSearch(arg)

	case "next":
		r.focus(r.sess.NextMatch())

	case "prev":
		r.focus(r.sess.PrevMatch())

	case "open":
		r.withSelection(func(n *filesystem.Node) error {
			return r.sess.OpenByID(n.NodeID())
		})

	case "save":
		if err := r.sess.Save(); err != nil {
			r.report(err)
		} else {
			fmt.Fprintf(r.out, "saved %s\n", r.sess.Config().DocumentPath)
		}

	default:
		fmt.Fprintf(r.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return true
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Commands:
  tree                 show the tree (* marks the selection)
  select <path>        select a node by names joined with /
  path [--clip]        print the selected path, optionally to the clipboard
  mkdir [name]         create a folder in the selection
  touch [name]         create a file in the selection
  rm                   delete the selection
  rename <name>        rename the selection
  copy | drag          put the selection on the clipboard / start dragging it
  paste | drop         paste / drop onto the selected folder
  search <keyword>     find nodes by name and select the first match
  next | prev          select the next / previous match
  open                 open the selected file
  save                 write the tree document
  quit                 leave the shell
`)
}

// report prints a rejected operation
func (r *REPL) report(err error) {
	if err == nil {
		return
	}
	logger := util.GetLogger("Shell")
	logger.Debug().Err(err).Msg("Command rejected")
	fmt.Fprintf(r.out, "error: %v\n", err)
}

func (r *REPL) selection() (*filesystem.Node, error) {
	if r.selected == 0 {
		return nil, errNoSelection
	}
	n, ok := r.sess.Lookup(r.selected)
	if !ok {
		r.selected = 0
		return nil, errNoSelection
	}
	return n, nil
}

func (r *REPL) withSelection(fn func(n *filesystem.Node) error) {
	n, err := r.selection()
	if err != nil {
		r.report(err)
		return
	}
	r.report(fn(n))
}

func (r *REPL) cmdSelect(arg string) {
	if arg == "" {
		r.report(errors.New("usage: select <path>"))
		return
	}
	n, err := r.sess.Resolve(arg)
	if err != nil {
		r.report(err)
		return
	}
	r.selected = n.NodeID()
	fmt.Fprintln(r.out, r.sess.DisplayPath(n))
}

func (r *REPL) cmdPath(arg string) {
	n, err := r.selection()
	if err != nil {
		r.report(err)
		return
	}
	p := r.sess.DisplayPath(n)
	fmt.Fprintln(r.out, p)
	if arg != "--clip" {
		return
	}
	if r.clip == nil {
		r.report(errors.New("clipboard not available"))
		return
	}
	if err := r.clip.WriteAll(p); err != nil {
		r.report(fmt.Errorf("failed to copy path: %w", err))
		return
	}
	fmt.Fprintln(r.out, "path copied to clipboard")
}

func (r *REPL) cmdCreate(name string, file bool) {
	r.withSelection(func(parent *filesystem.Node) error {
		var n *filesystem.Node
		var err error
		if file {
			if name == "" {
				name = filesystem.DefaultFileName(r.now(), "txt")
			}
			n, err = r.sess.CreateFileByID(parent.NodeID(), name)
		} else {
			if name == "" {
				name = filesystem.DefaultFolderName(r.now())
			}
			n, err = r.sess.CreateFolderByID(parent.NodeID(), name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "created %s\n", r.sess.DisplayPath(n))
		return nil
	})
}

func (r *REPL) cmdDelete() {
	n, err := r.selection()
	if err != nil {
		r.report(err)
		return
	}
	parent := n.Parent()
	p := r.sess.Path(n)
	if err := r.sess.DeleteByID(n.NodeID()); err != nil {
		r.report(err)
		return
	}
	r.selected = 0
	if parent != nil {
		r.selected = parent.NodeID()
	}
	fmt.Fprintf(r.out, "deleted %s\n", p)
}

func (r *REPL) cmdRename(name string) {
	r.withSelection(func(n *filesystem.Node) error {
		err := r.sess.RenameByID(n.NodeID(), name)
		if errors.Is(err, filesystem.ErrNoOp) {
			// unchanged names are silently ignored
			return nil
		}
		return err
	})
}

func (r *REPL) cmdSearch(keyword string) {
	matches, err := r.sess.Search(keyword)
	if err != nil {
		r.report(err)
		return
	}
	if len(matches) == 0 {
		fmt.Fprintln(r.out, "no matches")
		return
	}
	for i, n := range matches {
		fmt.Fprintf(r.out, "%d. %s\n", i+1, r.sess.DisplayPath(n))
	}
	r.selected = matches[0].NodeID()
}

// focus selects a navigation target
func (r *REPL) focus(n *filesystem.Node, ok bool) {
	idx, total := r.sess.MatchIndex()
	if !ok {
		if total > 0 {
			fmt.Fprintf(r.out, "[%d/%d] match was deleted\n", idx+1, total)
			return
		}
		fmt.Fprintln(r.out, "no matches")
		return
	}
	r.selected = n.NodeID()
	fmt.Fprintf(r.out, "[%d/%d] %s\n", idx+1, total, r.sess.DisplayPath(n))
}
