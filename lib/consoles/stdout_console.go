package consoles

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type stdoutConsole struct {
	out      io.Writer
	verbose  bool
	prefixes []string
}

func NewStdOutConsole(verbose bool) Console {
	return NewWriterConsole(os.Stdout, verbose)
}

func NewWriterConsole(out io.Writer, verbose bool) Console {
	return &stdoutConsole{
		out:     out,
		verbose: verbose,
	}
}

func (o *stdoutConsole) Printf(format string, a ...any) {
	builder := strings.Builder{}
	builder.WriteString("[")
	builder.WriteString(time.Now().Format("15:04:05"))
	builder.WriteString("] ")
	for _, prefix := range o.prefixes {
		builder.WriteString(prefix)
	}
	builder.WriteString(fmt.Sprintf(format, a...))
	_, _ = io.WriteString(o.out, builder.String())
}

func (o *stdoutConsole) Debugf(format string, a ...any) {
	if !o.verbose {
		return
	}

	o.Printf(format, a...)
}

func (o *stdoutConsole) PushPrefix(format string, a ...any) {
	o.prefixes = append(o.prefixes, fmt.Sprintf(format, a...))
}

func (o *stdoutConsole) PopPrefix() {
	if len(o.prefixes) == 0 {
		return
	}

	o.prefixes = o.prefixes[:len(o.prefixes)-1]
}
