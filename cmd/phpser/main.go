package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	perrors "github.com/phpser/phpser/errors"
	"github.com/phpser/phpser/wire"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to file with serialized data (\"-\" for stdin)")
		expr        = flag.String("e", "", "Serialized data given inline")
		maxDepth    = flag.Int("max-depth", wire.DefaultMaxDepth, "Maximum nesting depth")
		canonical   = flag.Bool("c", false, "Print the canonical re-encoding instead of a tree")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(*maxDepth); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *inFile == "" && *expr == "" {
		fmt.Fprintln(os.Stderr, "Usage: phpser -in <file> | -e <data>")
		fmt.Fprintln(os.Stderr, "       phpser -i  (interactive mode)")
		os.Exit(1)
	}

	data, err := readInput(*inFile, *expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := inspect(data, *maxDepth, *canonical); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readInput(inFile, expr string) ([]byte, error) {
	switch {
	case expr != "":
		return []byte(expr), nil
	case inFile == "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(inFile)
	}
}

func inspect(data []byte, maxDepth int, canonical bool) error {
	v, err := wire.Parse(data, wire.WithMaxDepth(maxDepth))
	if err != nil {
		return describeErr(err)
	}

	if canonical {
		out, err := wire.Encode(v)
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
		fmt.Println()
		return nil
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Print(renderTree(v, 0, styled))
	return nil
}

// describeErr points at the offending byte when the error carries an
// offset.
func describeErr(err error) error {
	var pe *perrors.Error
	if errors.As(err, &pe) && pe.Offset > perrors.NoOffset {
		return fmt.Errorf("%w (byte %d)", err, pe.Offset)
	}
	return err
}

var (
	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func renderTree(v *wire.Value, indent int, styled bool) string {
	var b strings.Builder
	writeValue(&b, v, indent, styled)
	return b.String()
}

func writeValue(b *strings.Builder, v *wire.Value, indent int, styled bool) {
	pad := strings.Repeat("  ", indent)

	label := v.Kind.String()
	if styled {
		label = tagStyle.Render(label)
	}
	b.WriteString(pad)
	b.WriteString(label)

	switch v.Kind {
	case wire.KindNull:
	case wire.KindBool:
		b.WriteString(" " + scalar(fmt.Sprintf("%v", v.Bool), styled))
	case wire.KindInt:
		b.WriteString(" " + scalar(fmt.Sprintf("%d", v.Int), styled))
	case wire.KindFloat:
		b.WriteString(" " + scalar(wire.FormatFloat(v.Float), styled))
	case wire.KindBytes:
		b.WriteString(" " + scalar(fmt.Sprintf("%q (%d bytes)", v.Bytes, len(v.Bytes)), styled))
	case wire.KindArray:
		b.WriteString(fmt.Sprintf(" (%d entries)", len(v.Elems)))
	}

	off := fmt.Sprintf("  @%d", v.Offset)
	if styled {
		off = offsetStyle.Render(off)
	}
	b.WriteString(off)
	b.WriteString("\n")

	if v.Kind == wire.KindArray {
		for _, e := range v.Elems {
			key := e.Key.String()
			if styled {
				key = keyStyle.Render(key)
			}
			b.WriteString(strings.Repeat("  ", indent+1))
			b.WriteString(key)
			b.WriteString(" =>\n")
			writeValue(b, e.Value, indent+2, styled)
		}
	}
}

func scalar(s string, styled bool) string {
	if styled {
		return scalarStyle.Render(s)
	}
	return s
}
