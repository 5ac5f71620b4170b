package server

import (
	"io"
	"log/slog"
)

// Option configures a Server.
type Option func(*Server)

// WithIO supplies the transport reader and writer. Defaults are os.Stdin
// and os.Stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		if r != nil {
			s.reader = r
		}
		if w != nil {
			s.writer = w
		}
	}
}

// WithLogger sets the diagnostic logger. The logger must not write to the
// transport writer; diagnostics belong on stderr.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithServerInfo overrides the implementation name and version advertised
// during initialize.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		if name != "" {
			s.info.Name = name
		}
		if version != "" {
			s.info.Version = version
		}
	}
}
