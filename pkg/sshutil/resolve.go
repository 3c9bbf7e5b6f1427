// Package sshutil resolves host identifiers into connectable SSH targets,
// honoring ~/.ssh/config aliases where available.
package sshutil

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// Target is a resolved SSH endpoint.
type Target struct {
	// Host is the original identifier from the input list.
	Host string

	// Hostname is the resolved host to connect to.
	Hostname string

	// Port is the resolved port.
	Port int

	// User is the login name, if any was specified or configured.
	// Probes never authenticate; this only shapes the handshake.
	User string
}

// Address returns the hostname:port dial string.
func (t Target) Address() string {
	return net.JoinHostPort(t.Hostname, strconv.Itoa(t.Port))
}

// Resolver maps host identifiers to Targets using an optional SSH config.
type Resolver struct {
	cfg *ssh_config.Config
}

// NewResolver loads the user's ~/.ssh/config if present. A missing or
// unparseable config degrades to plain host:port resolution.
func NewResolver() *Resolver {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Resolver{}
	}
	r, err := NewResolverFromFile(filepath.Join(home, ".ssh", "config"))
	if err != nil {
		return &Resolver{}
	}
	return r
}

// NewResolverFromFile loads a specific SSH config file.
// A missing file yields a resolver with no alias knowledge.
func NewResolverFromFile(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Resolver{}, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// Resolve turns a host identifier into a Target. Accepted forms:
//   - hostname or IP            (port from SSH config or defaultPort)
//   - user@hostname
//   - hostname:port / [v6]:port (explicit port wins over config)
//   - SSH config alias
func (r *Resolver) Resolve(host string, defaultPort int) Target {
	t := Target{Host: host, Port: defaultPort}

	rest := host
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		t.User = rest[:at]
		rest = rest[at+1:]
	}

	explicitPort := false
	if h, p, err := net.SplitHostPort(rest); err == nil {
		if n, perr := strconv.Atoi(p); perr == nil {
			rest = h
			t.Port = n
			explicitPort = true
		}
	}

	t.Hostname = rest

	if r.cfg != nil {
		if v, err := r.cfg.Get(rest, "HostName"); err == nil && v != "" {
			t.Hostname = v
		}
		if !explicitPort {
			if v, err := r.cfg.Get(rest, "Port"); err == nil && v != "" {
				if n, perr := strconv.Atoi(v); perr == nil {
					t.Port = n
				}
			}
		}
		if t.User == "" {
			if v, err := r.cfg.Get(rest, "User"); err == nil && v != "" {
				t.User = v
			}
		}
	}

	return t
}
