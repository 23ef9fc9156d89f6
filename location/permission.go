package location

import (
	"context"
	"fmt"
	"sync"
)

type PermissionOutcome int

const (
	Denied PermissionOutcome = iota
	Granted
)

func (o PermissionOutcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("PermissionOutcome(%d)", int(o))
	}
}

// Permission gates access to the device position. Granted is checked on the
// event loop; Request runs in the background and may block on the user.
type Permission interface {
	Granted() bool
	Request(ctx context.Context) (PermissionOutcome, error)
}

// StaticPermission is a fixed grant, e.g. from configuration.
type StaticPermission bool

func (s StaticPermission) Granted() bool {
	return bool(s)
}

func (s StaticPermission) Request(context.Context) (PermissionOutcome, error) {
	if s {
		return Granted, nil
	}
	return Denied, nil
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PromptPermission asks the user once and remembers a grant. A denial is not
// remembered, the next request asks again.
type PromptPermission struct {
	mu       sync.RWMutex
	granted  bool
	question string
	confirm  Confirmer
	onGrant  func() error
}

// NewPromptPermission creates a prompt-backed permission. onGrant, if set, is
// called after the user grants access, e.g. to persist the grant.
func NewPromptPermission(granted bool, question string, confirm Confirmer, onGrant func() error) *PromptPermission {
	return &PromptPermission{
		granted:  granted,
		question: question,
		confirm:  confirm,
		onGrant:  onGrant,
	}
}

func (p *PromptPermission) Granted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.granted
}

func (p *PromptPermission) Request(ctx context.Context) (PermissionOutcome, error) {
	if p.Granted() {
		return Granted, nil
	}

	ok, err := p.confirm.Confirm(ctx, p.question)
	if err != nil {
		return Denied, fmt.Errorf("unable to ask for location permission: %w", err)
	}
	if !ok {
		return Denied, nil
	}

	p.mu.Lock()
	p.granted = true
	p.mu.Unlock()

	if p.onGrant != nil {
		if err := p.onGrant(); err != nil {
			log.Warnf("unable to persist location permission: %v", err)
		}
	}
	return Granted, nil
}

var (
	_ Permission = StaticPermission(false)
	_ Permission = (*PromptPermission)(nil)
)
