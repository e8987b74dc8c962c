package core

// Toaster shows user-visible notices. All user-facing failures go through it.
type Toaster interface {
	Error(msg string)
	Warning(msg string)
}

// SessionCloseFunc is the upstream callback fired when the session ends for good.
type SessionCloseFunc func()
