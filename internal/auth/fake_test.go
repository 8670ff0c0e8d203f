package auth

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/oauth"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

type account struct {
	id          uuid.UUID
	password    string
	unconfirmed bool
}

type upload struct {
	bucket, path, contentType string
	data                      string
	upsert                    bool
}

// fakeBackend is an in-memory backend that behaves like the client: it
// keeps a session and announces changes to listeners.
type fakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]*account
	profiles  map[uuid.UUID]domain.User
	session   *domain.AuthSession
	listeners map[int]client.AuthListener
	nextID    int
	calls     []string

	oauthUser *domain.AuthUser

	rpcErr    error
	insertErr error
	getErr    error
	signOutIn chan struct{} // closed or sent on when SignOut starts
	signOutGo chan struct{} // SignOut waits on this when set
	signInGo  chan struct{} // SignInWithPassword waits on this when set

	uploads  []upload
	resets   []string
	password string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:  make(map[string]*account),
		profiles:  make(map[uuid.UUID]domain.User),
		listeners: make(map[int]client.AuthListener),
	}
}

var _ Backend = (*fakeBackend)(nil)

// addUser registers a credential with a profile.
func (f *fakeBackend) addUser(email, password, name string, role domain.Role) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.accounts[email] = &account{id: id, password: password}
	u := domain.User{ID: id, Email: email, Name: name, Role: role}
	f.profiles[id] = u
	return u
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) emit(event client.AuthEvent, s *domain.AuthSession) {
	f.mu.Lock()
	fns := make([]client.AuthListener, 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(event, s)
	}
}

func (f *fakeBackend) startSession(id uuid.UUID, email string) *domain.AuthSession {
	s := &domain.AuthSession{
		AccessToken:  "at-" + id.String(),
		RefreshToken: "rt-" + id.String(),
		User:         &domain.AuthUser{ID: id, Email: email},
	}
	f.mu.Lock()
	f.session = s
	f.mu.Unlock()
	f.emit(client.EventSignedIn, s)
	return s
}

func (f *fakeBackend) SignInWithPassword(_ context.Context, email, password string) (*domain.AuthSession, error) {
	f.record("SignInWithPassword")
	if f.signInGo != nil {
		<-f.signInGo
	}
	f.mu.Lock()
	acc, ok := f.accounts[email]
	f.mu.Unlock()
	if !ok || acc.password != password {
		return nil, &client.APIError{StatusCode: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
	}
	if acc.unconfirmed {
		return nil, &client.APIError{StatusCode: 400, Code: "email_not_confirmed", Message: "Email not confirmed"}
	}
	return f.startSession(acc.id, email), nil
}

func (f *fakeBackend) SignUp(_ context.Context, email, password string) (*domain.AuthUser, error) {
	f.record("SignUp")
	f.mu.Lock()
	if _, ok := f.accounts[email]; ok {
		f.mu.Unlock()
		return nil, &client.APIError{StatusCode: 422, Code: "user_already_exists", Message: "User already registered"}
	}
	id := uuid.New()
	f.accounts[email] = &account{id: id, password: password}
	f.mu.Unlock()
	s := f.startSession(id, email)
	u := *s.User
	return &u, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.record("SignOut")
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.emit(client.EventSignedOut, nil)
	if f.signOutIn != nil {
		f.signOutIn <- struct{}{}
	}
	if f.signOutGo != nil {
		<-f.signOutGo
	}
	return nil
}

func (f *fakeBackend) Session(context.Context) (*domain.AuthSession, error) {
	f.record("Session")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, nil
	}
	cp := *f.session
	return &cp, nil
}

func (f *fakeBackend) oauthSession() (*domain.AuthSession, error) {
	f.mu.Lock()
	u := f.oauthUser
	f.mu.Unlock()
	if u == nil {
		return nil, &client.APIError{StatusCode: 400, Message: "invalid grant"}
	}
	return f.startSession(u.ID, u.Email), nil
}

func (f *fakeBackend) SetSession(_ context.Context, tokens domain.TokenPair) (*domain.AuthSession, error) {
	f.record("SetSession")
	if tokens.AccessToken == "expired" {
		return nil, &client.APIError{StatusCode: 401, Message: "invalid JWT"}
	}
	f.mu.Lock()
	oauthUser := f.oauthUser
	f.mu.Unlock()
	if oauthUser == nil {
		return f.startSession(uuid.New(), "recovery@example.com"), nil
	}
	s, err := f.oauthSession()
	if err == nil {
		s.User.UserMetadata = oauthUser.UserMetadata
	}
	return s, err
}

func (f *fakeBackend) ExchangeCodeForSession(_ context.Context, code, verifier string) (*domain.AuthSession, error) {
	f.record("ExchangeCodeForSession")
	if code == "" || verifier == "" {
		return nil, &client.APIError{StatusCode: 400, Message: "missing code"}
	}
	s, err := f.oauthSession()
	if err == nil {
		f.mu.Lock()
		s.User.UserMetadata = f.oauthUser.UserMetadata
		f.mu.Unlock()
	}
	return s, err
}

func (f *fakeBackend) AuthorizeURL(provider, redirectTo, codeChallenge string, extra url.Values) string {
	params := url.Values{"provider": {provider}, "redirect_to": {redirectTo}, "code_challenge": {codeChallenge}}
	for k, v := range extra {
		params[k] = v
	}
	return "https://auth.example/authorize?" + params.Encode()
}

func (f *fakeBackend) ResetPasswordForEmail(_ context.Context, email, redirectTo string) error {
	f.record("ResetPasswordForEmail")
	f.mu.Lock()
	f.resets = append(f.resets, email+" "+redirectTo)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) UpdatePassword(_ context.Context, password string) error {
	f.record("UpdatePassword")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return client.ErrNoSession
	}
	f.password = password
	return nil
}

func (f *fakeBackend) OnAuthStateChange(fn client.AuthListener) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeBackend) GetProfile(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.record("GetProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.profiles[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 406, Code: client.CodeNoRows, Message: "JSON object requested, multiple (or no) rows returned"}
	}
	return &u, nil
}

func (f *fakeBackend) InsertProfile(_ context.Context, p domain.NewProfile) (*domain.User, error) {
	f.record("InsertProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if _, ok := f.profiles[p.ID]; ok {
		return nil, &client.APIError{StatusCode: 409, Code: client.CodeUniqueViolation, Message: "duplicate key"}
	}
	u := domain.User{ID: p.ID, Email: p.Email, Name: p.Name, AvatarURL: p.AvatarURL, Role: p.Role}
	f.profiles[p.ID] = u
	return &u, nil
}

func (f *fakeBackend) CreateUserProfile(_ context.Context, p domain.NewProfile) error {
	f.record("CreateUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rpcErr != nil {
		return f.rpcErr
	}
	f.profiles[p.ID] = domain.User{ID: p.ID, Email: p.Email, Name: p.Name, Role: p.Role}
	return nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	f.record("UpdateProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.profiles[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 406, Code: client.CodeNoRows}
	}
	if upd.Email != nil {
		for _, other := range f.profiles {
			if other.ID != id && other.Email == *upd.Email {
				return nil, &client.APIError{StatusCode: 409, Code: client.CodeUniqueViolation, Message: "duplicate key"}
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	f.profiles[id] = u
	return &u, nil
}

func (f *fakeBackend) Upload(_ context.Context, bucket, path string, data io.Reader, opts client.UploadOptions) error {
	f.record("Upload")
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, upload{bucket: bucket, path: path, contentType: opts.ContentType, data: string(b), upsert: opts.Upsert})
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) PublicURL(bucket, path string) string {
	return "https://cdn.example/" + bucket + "/" + path
}

func (f *fakeBackend) profileCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

// fakeBrowser returns a canned redirect.
type fakeBrowser struct {
	res     oauth.Result
	err     error
	authURL string
}

func (b *fakeBrowser) OpenAuthSession(_ context.Context, authURL, _ string) (oauth.Result, error) {
	b.authURL = authURL
	return b.res, b.err
}
