// Package prompt implements the interactive review loop run after each
// cluster's fitting completes.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"rsz/internal/model"
)

// Prompt reviews one finished cluster. Implementations mutate only that
// cluster's flags and interesting annotation.
type Prompt interface {
	Review(c *model.Cluster)
}

// NoopPrompt accepts every fit without interaction.
type NoopPrompt struct{}

func (NoopPrompt) Review(_ *model.Cluster) {}

// StdinPrompt reads review commands from an input stream, one cluster at a
// time, between cluster completions.
type StdinPrompt struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewStdinPrompt creates a prompt over stdin/stdout.
func NewStdinPrompt() *StdinPrompt {
	return &StdinPrompt{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
}

// NewPrompt creates a prompt over arbitrary streams, for tests.
func NewPrompt(in io.Reader, out io.Writer) *StdinPrompt {
	return &StdinPrompt{in: bufio.NewScanner(in), out: out}
}

// Review runs the command loop for one cluster until the user accepts.
func (p *StdinPrompt) Review(c *model.Cluster) {
	fmt.Fprintf(p.out, "review %s: ok | reject <combination> | interesting | help\n", c.Name)
	for {
		fmt.Fprint(p.out, "> ")
		if !p.in.Scan() {
			return
		}
		line := strings.TrimSpace(p.in.Text())
		switch {
		case line == "" || line == "ok" || line == "done":
			return
		case line == "interesting":
			c.Interesting = true
			fmt.Fprintf(p.out, "%s marked interesting\n", c.Name)
		case strings.HasPrefix(line, "reject "):
			combo := strings.TrimSpace(strings.TrimPrefix(line, "reject "))
			f, ok := c.Flags[combo]
			if !ok {
				fmt.Fprintf(p.out, "no combination %q in this cluster\n", combo)
				continue
			}
			f.UserRejected = true
			c.Flags[combo] = f
			fmt.Fprintf(p.out, "%s %s flagged bad\n", c.Name, combo)
		case line == "help":
			fmt.Fprintln(p.out, "commands:\n  ok            accept and continue\n  reject <c>    flag combination c as bad\n  interesting   mark this cluster interesting")
		default:
			fmt.Fprintf(p.out, "unknown command %q (try help)\n", line)
		}
	}
}
