// Package hostlist reads the ordered host list that a scan iterates over.
package hostlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/probelab/kexscan/internal/errors"
)

// Options controls how the input file is interpreted.
type Options struct {
	// KeepBlanks preserves blank lines as empty hosts instead of skipping
	// them. The historical tool probed blank lines; skipping is the
	// default here and skipped lines are counted in List.Blanks.
	KeepBlanks bool
}

// List is an ordered host list as read from an input file.
// Hosts are not validated or deduplicated; duplicates probe twice.
type List struct {
	Path   string
	Hosts  []string
	Blanks int // blank lines skipped (0 when KeepBlanks is set)
}

// Load reads a host list from path, one host per line.
// A missing file is an ErrInput error; nothing is probed or truncated.
func Load(path string, opts Options) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrInput,
				"Host list not found: "+path,
				"Create the file with one host or IP per line, or pass --input")
		}
		return nil, errors.WrapWithCode(err, errors.ErrInput,
			"Can't read host list: "+path,
			"Check file permissions")
	}
	defer f.Close()

	list, err := Parse(f, opts)
	if err != nil {
		return nil, err
	}
	list.Path = path
	return list, nil
}

// Parse reads a host list from r, one host per line.
// Lines keep their input order; trailing whitespace and CR are trimmed.
func Parse(r io.Reader, opts Options) (*List, error) {
	list := &List{Hosts: make([]string, 0)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" && !opts.KeepBlanks {
			list.Blanks++
			continue
		}
		list.Hosts = append(list.Hosts, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInput,
			"Failed reading host list",
			"Check the file isn't being truncated while the scan runs")
	}

	return list, nil
}

// Len returns the number of hosts to probe.
func (l *List) Len() int {
	return len(l.Hosts)
}
