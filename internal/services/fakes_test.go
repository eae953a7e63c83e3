package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/oauth"
	"recruitsync_backend/internal/platforms"
	"recruitsync_backend/internal/repositories"
)

// ---- connections ----

type memConnections struct {
	mu    sync.Mutex
	items map[string]models.PlatformConnection
}

func newMemConnections(conns ...*models.PlatformConnection) *memConnections {
	m := &memConnections{items: map[string]models.PlatformConnection{}}
	for _, c := range conns {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		m.items[c.ID] = *c
	}
	return m
}

func (m *memConnections) get(id string) *models.PlatformConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.items[id]
	return &c
}

func (m *memConnections) Create(_ context.Context, conn *models.PlatformConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Name == conn.Name {
			return repositories.ErrConnectionExists
		}
	}
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	m.items[conn.ID] = *conn
	return nil
}

func (m *memConnections) Update(_ context.Context, conn *models.PlatformConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.items[conn.ID]
	if !ok {
		return repositories.ErrConnectionNotFound
	}
	next := *conn
	next.TotalSynced = prev.TotalSynced
	next.LastSyncAt = prev.LastSyncAt
	next.CreatedAt = prev.CreatedAt
	m.items[conn.ID] = next
	return nil
}

func (m *memConnections) FindByID(_ context.Context, id string) (*models.PlatformConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrConnectionNotFound
	}
	return &c, nil
}

func (m *memConnections) FindByName(_ context.Context, name string) (*models.PlatformConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repositories.ErrConnectionNotFound
}

func (m *memConnections) List(_ context.Context) ([]models.PlatformConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PlatformConnection, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memConnections) ListByStatus(ctx context.Context, status models.ConnectionStatus) ([]models.PlatformConnection, error) {
	all, _ := m.List(ctx)
	var out []models.PlatformConnection
	for _, c := range all {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memConnections) UpdateTokens(_ context.Context, id string, cred models.OAuthCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repositories.ErrConnectionNotFound
	}
	prev, _ := c.Credential().(models.OAuthCredential)
	if cred.RefreshToken == "" {
		cred.RefreshToken = prev.RefreshToken
	}
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = prev.ExpiresAt
	}
	if len(cred.Scopes) == 0 {
		cred.Scopes = prev.Scopes
	}
	if cred.Provider == "" {
		cred.Provider = prev.Provider
	}
	c.SetOAuth(cred)
	m.items[id] = c
	return nil
}

func (m *memConnections) ClearCredentials(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repositories.ErrConnectionNotFound
	}
	c.APIKey = nil
	c.RefreshToken = nil
	c.TokenExpiresAt = nil
	c.OAuthProvider = nil
	c.TokenScopes = nil
	c.Status = models.ConnectionStatusDisconnected
	m.items[id] = c
	return nil
}

func (m *memConnections) UpdateStatus(_ context.Context, id string, status models.ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repositories.ErrConnectionNotFound
	}
	c.Status = status
	m.items[id] = c
	return nil
}

func (m *memConnections) RecordSync(_ context.Context, id string, imported int, lastSyncAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repositories.ErrConnectionNotFound
	}
	c.TotalSynced += imported
	if lastSyncAt != nil {
		at := *lastSyncAt
		c.LastSyncAt = &at
	}
	m.items[id] = c
	return nil
}

func (m *memConnections) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repositories.ErrConnectionNotFound
	}
	delete(m.items, id)
	return nil
}

// ---- sync logs ----

type memSyncLogs struct {
	mu   sync.Mutex
	logs []models.SyncLog
}

func (m *memSyncLogs) Create(_ context.Context, log *models.SyncLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memSyncLogs) ListByPlatform(_ context.Context, platformID string, limit int) ([]models.SyncLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SyncLog
	for i := len(m.logs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.logs[i].PlatformID == platformID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

func (m *memSyncLogs) all() []models.SyncLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SyncLog(nil), m.logs...)
}

// ---- candidates, employees and checklists ----

// memStore backs both the candidate and the hire repository fakes so a hire is
// visible to candidate reads.
type memStore struct {
	mu         sync.Mutex
	candidates map[string]models.Candidate
	employees  []models.Employee
	tasks      []models.EmployeeTask
	positions  map[string]models.Position
	items      []models.ChecklistItem

	// raceOn makes CreateIfAbsent lose to a phantom concurrent insert.
	raceOn map[string]bool
	// failCreateAfter makes CreateIfAbsent fail once this many rows exist.
	failCreateAfter int
	// failTasks makes CreateTasks fail.
	failTasks bool
}

func newMemStore() *memStore {
	return &memStore{
		candidates: map[string]models.Candidate{},
		positions:  map[string]models.Position{},
		raceOn:     map[string]bool{},
	}
}

func (s *memStore) seedCandidate(c models.Candidate) models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.CandidateStatusNew
	}
	s.candidates[c.ID] = c
	return c
}

func (s *memStore) candidate(id string) models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates[id]
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candidates)
}

func (s *memStore) byEmail(email string) (models.Candidate, bool) {
	for _, c := range s.candidates {
		if c.Email == email {
			return c, true
		}
	}
	return models.Candidate{}, false
}

type memCandidates struct{ *memStore }

func (r memCandidates) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail(email)
	return ok, nil
}

func (r memCandidates) CreateIfAbsent(_ context.Context, c *models.Candidate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateAfter > 0 && len(r.candidates) >= r.failCreateAfter {
		return false, errors.New("connection reset by peer")
	}
	if r.raceOn[c.Email] {
		return false, nil
	}
	if _, ok := r.byEmail(c.Email); ok {
		return false, nil
	}
	c.ID = uuid.NewString()
	r.candidates[c.ID] = *c
	return true, nil
}

func (r memCandidates) Create(_ context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail(c.Email); ok {
		return repositories.ErrCandidateExists
	}
	c.ID = uuid.NewString()
	r.candidates[c.ID] = *c
	return nil
}

func (r memCandidates) FindByID(_ context.Context, id string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, repositories.ErrCandidateNotFound
	}
	return &c, nil
}

func (r memCandidates) List(_ context.Context, filter repositories.CandidateFilter) ([]models.Candidate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.candidates {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Source != "" && c.Source != filter.Source {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (r memCandidates) UpdateStatus(_ context.Context, id string, from, to models.CandidateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok || c.Status != from {
		return repositories.ErrStatusConflict
	}
	c.Status = to
	r.candidates[id] = c
	return nil
}

type memHires struct{ *memStore }

// WithinTransaction holds the store lock for the whole unit, which also
// serialises concurrent hires the way the row lock does.
func (r memHires) WithinTransaction(_ context.Context, fn func(tx repositories.HireTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := make(map[string]models.Candidate, len(r.candidates))
	for k, v := range r.candidates {
		candidates[k] = v
	}
	employees := append([]models.Employee(nil), r.employees...)
	tasks := append([]models.EmployeeTask(nil), r.tasks...)

	if err := fn(memHireTx{r.memStore}); err != nil {
		r.candidates, r.employees, r.tasks = candidates, employees, tasks
		return err
	}
	return nil
}

type memHireTx struct{ *memStore }

func (t memHireTx) LockCandidate(id string) (*models.Candidate, error) {
	c, ok := t.candidates[id]
	if !ok {
		return nil, repositories.ErrCandidateNotFound
	}
	return &c, nil
}

func (t memHireTx) FindPosition(id string) (*models.Position, error) {
	p, ok := t.positions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t memHireTx) CreateEmployee(e *models.Employee) error {
	for _, existing := range t.employees {
		if existing.CandidateID != nil && e.CandidateID != nil && *existing.CandidateID == *e.CandidateID {
			return repositories.ErrEmployeeExists
		}
	}
	e.ID = uuid.NewString()
	t.employees = append(t.employees, *e)
	return nil
}

func (t memHireTx) OnboardingItems() ([]models.ChecklistItem, error) {
	return append([]models.ChecklistItem(nil), t.items...), nil
}

func (t memHireTx) CreateTasks(tasks []models.EmployeeTask) error {
	if t.failTasks {
		return errors.New("insert employee_tasks: deadlock detected")
	}
	for i := range tasks {
		tasks[i].ID = uuid.NewString()
	}
	t.tasks = append(t.tasks, tasks...)
	return nil
}

func (t memHireTx) MarkHired(candidateID string, hiredAt time.Time) error {
	c := t.candidates[candidateID]
	if c.Status == models.CandidateStatusHired {
		return repositories.ErrAlreadyHired
	}
	c.Status = models.CandidateStatusHired
	c.HiredAt = &hiredAt
	t.candidates[candidateID] = c
	return nil
}

// ---- platform clients ----

type fakeClient struct {
	name     string
	provider string
	batch    []platforms.ExternalCandidate
	err      error
	delay    time.Duration
	panics   bool
	valid    func(string) bool

	fetches   atomic.Int32
	lastToken atomic.Value
}

func (c *fakeClient) Name() string { return c.name }

func (c *fakeClient) ValidateCredentials(_ context.Context, credential string) bool {
	if c.valid == nil {
		return credential != ""
	}
	return c.valid(credential)
}

func (c *fakeClient) FetchCandidates(ctx context.Context, accessToken string) ([]platforms.ExternalCandidate, error) {
	c.fetches.Add(1)
	c.lastToken.Store(accessToken)
	if c.panics {
		panic("unexpected payload shape")
	}
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.batch, nil
}

type fakeOAuthClient struct{ *fakeClient }

func (c fakeOAuthClient) OAuthProvider() string { return c.provider }

type fakeRegistry map[string]platforms.Client

func (r fakeRegistry) Get(name string) (platforms.Client, error) {
	c, ok := r[name]
	if !ok {
		return nil, platforms.ErrUnsupportedPlatform
	}
	return c, nil
}

func (r fakeRegistry) HasSyncSupport(name string) bool {
	_, ok := r[name]
	return ok
}

func (r fakeRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ---- token plumbing ----

type fakeRefresher struct {
	calls atomic.Int32
	delay time.Duration
	tok   *oauth.Token
	err   error
}

func (f *fakeRefresher) RefreshAccessToken(_ context.Context, _, _ string) (*oauth.Token, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	tok := *f.tok
	return &tok, nil
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) EnsureValidToken(_ context.Context, conn *models.PlatformConnection) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.token != "" {
		return s.token, nil
	}
	cred := conn.Credential()
	if cred == nil {
		return "", errors.New("no credential")
	}
	return cred.AccessToken(), nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	reconnect []string
	welcomes  []string
	done      chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) SendReconnectRequired(platform, _ string) error {
	n.mu.Lock()
	n.reconnect = append(n.reconnect, platform)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func (n *recordingNotifier) SendWelcome(to, _, _ string, _ time.Time, _ int) error {
	n.mu.Lock()
	n.welcomes = append(n.welcomes, to)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

// ---- helpers ----

func apiKeyConnection(name, key string) *models.PlatformConnection {
	conn := &models.PlatformConnection{
		Name:   name,
		Type:   models.PlatformTypeJobBoard,
		Status: models.ConnectionStatusActive,
	}
	conn.ID = uuid.NewString()
	conn.SetAPIKey(key)
	return conn
}

func oauthConnection(name string, cred models.OAuthCredential) *models.PlatformConnection {
	conn := &models.PlatformConnection{
		Name:   name,
		Type:   models.PlatformTypePremium,
		Status: models.ConnectionStatusActive,
	}
	conn.ID = uuid.NewString()
	conn.SetOAuth(cred)
	return conn
}

func ext(first, email string) platforms.ExternalCandidate {
	return platforms.ExternalCandidate{FirstName: first, LastName: "Test", Email: email}
}
