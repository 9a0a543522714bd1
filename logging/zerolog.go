package logging

import (
	"github.com/rs/zerolog"
)

// zlClient forwards to a zerolog.Logger, for code running outside a Tarmac host.
type zlClient struct {
	l zerolog.Logger
}

// NewZerolog adapts a zerolog.Logger to Client. Level filtering is left to the logger.
func NewZerolog(l zerolog.Logger) Client {
	return &zlClient{l: l}
}

func (z *zlClient) Info(message string)  { z.l.Info().Msg(message) }
func (z *zlClient) Warn(message string)  { z.l.Warn().Msg(message) }
func (z *zlClient) Error(message string) { z.l.Error().Msg(message) }
func (z *zlClient) Debug(message string) { z.l.Debug().Msg(message) }
func (z *zlClient) Trace(message string) { z.l.Trace().Msg(message) }
