package feedview

import "sync"

// Identity reports who is signed in.
type Identity interface {
	CurrentUserId() (string, bool)
}

// AuthState is an Identity that notifies subscribers when the session
// changes.
type AuthState struct {
	mu        sync.Mutex
	userId    string
	listeners map[int]func(userId string)
	nextId    int
}

func NewAuthState() *AuthState {
	return &AuthState{listeners: make(map[int]func(string))}
}

func (a *AuthState) CurrentUserId() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userId, a.userId != ""
}

func (a *AuthState) SignIn(userId string) {
	a.set(userId)
}

func (a *AuthState) SignOut() {
	a.set("")
}

// Subscribe registers fn for session changes. fn gets "" on sign out.
func (a *AuthState) Subscribe(fn func(userId string)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextId
	a.nextId++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *AuthState) set(userId string) {
	a.mu.Lock()
	if a.userId == userId {
		a.mu.Unlock()
		return
	}
	a.userId = userId
	listeners := make([]func(string), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(userId)
	}
}

// Session is an Identity that can be watched for sign in and sign out.
type Session interface {
	Identity
	Subscribe(fn func(userId string)) (unsubscribe func())
}
