package ports

import "github.com/layer-3/teller/core"

// Tokenizer converts between authenticated sessions and signed tokens
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
