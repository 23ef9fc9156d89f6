// Package interaction models an external request/response exchange, such as a
// permission prompt or the place picker. The request runs outside the event
// loop; its outcome is delivered back on the loop tagged with the correlation
// token handed out at launch.
package interaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/loop"
)

var log = logrus.StandardLogger()

// Token correlates a launched interaction with its outcome.
type Token string

func NewToken() Token {
	return Token(uuid.NewString())
}

// Result is the outcome of one interaction.
type Result[T any] struct {
	Token Token
	Value T
	Err   error
}

// Func performs the external exchange. It may block.
type Func[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Launch starts fn in the background and returns immediately with the token of
// the interaction. resume is called on l once fn returns; it is dropped if the
// loop has been stopped in the meantime.
func Launch[Req, Res any](ctx context.Context, l *loop.Loop, fn Func[Req, Res], req Req, resume func(Result[Res])) Token {
	token := NewToken()
	log.Debugf("launching interaction %s", token)

	go func() {
		value, err := fn(ctx, req)
		res := Result[Res]{Token: token, Value: value, Err: err}
		if !l.Post(func() { resume(res) }) {
			log.Debugf("interaction %s finished after the event loop stopped", token)
		}
	}()
	return token
}
