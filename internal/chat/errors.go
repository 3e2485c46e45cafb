package chat

import (
	"errors"

	"github.com/lingochat/internal/repository"
	"github.com/lingochat/internal/translate"
)

var (
	ErrInvalidTarget        = errors.New("exactly one of userId or groupId is required")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrPinLimitReached      = errors.New("pinned conversations limit reached")
	ErrConversationArchived = errors.New("conversation is archived")
	ErrBlocked              = errors.New("user is blocked")
	ErrNotMember            = errors.New("not a group member")
	ErrInvalidCategory      = errors.New("invalid conversation category")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUsernameTaken        = errors.New("username already taken")

	ErrNotFound        = repository.ErrNotFound
	ErrInvalidLanguage = translate.ErrInvalidLanguage
)
