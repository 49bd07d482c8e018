package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig     = fmt.Errorf("answerdesk: invalid config")
	ErrInvalidParams     = fmt.Errorf("answerdesk: invalid params")
	ErrNotFound          = fmt.Errorf("answerdesk: not found")
	ErrSchema            = fmt.Errorf("answerdesk: knowledge base schema invalid")
	ErrSourceUnavailable = fmt.Errorf("answerdesk: knowledge source unavailable")
	ErrInternal          = fmt.Errorf("answerdesk: internal error")
)
