package keysim

import "errors"

// Sentinels matched by ParseKeyError through errors.Is.
var (
	ErrEmptyCombination = errors.New("empty key combination")
	ErrUnknownModifier  = errors.New("unknown modifier")
	ErrUnknownKey       = errors.New("unknown key")
)

// ErrInjectorUnavailable is returned when the injector could not be
// constructed. It is never a *ParseKeyError.
var ErrInjectorUnavailable = errors.New("injector unavailable")

// ParseKeyError describes which token of a combination could not be
// resolved.
type ParseKeyError struct {
	Kind  error  // one of the ErrEmptyCombination, ErrUnknownModifier, ErrUnknownKey sentinels
	Token string // normalized token, empty for ErrEmptyCombination
	Msg   string
}

func (e *ParseKeyError) Error() string { return e.Msg }

// Is lets errors.Is(err, ErrUnknownKey) and friends match.
func (e *ParseKeyError) Is(target error) bool { return e.Kind == target }

func errEmpty() *ParseKeyError {
	return &ParseKeyError{Kind: ErrEmptyCombination, Msg: "Empty key combination"}
}

func errModifier(token string) *ParseKeyError {
	return &ParseKeyError{Kind: ErrUnknownModifier, Token: token, Msg: "Unknown modifier: " + token}
}

func errKey(token string) *ParseKeyError {
	return &ParseKeyError{Kind: ErrUnknownKey, Token: token, Msg: "Unknown key: " + token}
}
