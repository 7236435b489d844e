package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driving"
)

// mockConnectionService implements driving.ConnectionService for testing.
// Unset hooks return zero values.
type mockConnectionService struct {
	addFn        func(driving.AddConnectionRequest) (*domain.NamedConnection, error)
	loginFn      func(driving.LoginRequest) (*domain.NamedConnection, error)
	removeFn     func(string) (bool, error)
	setDefaultFn func(string) error
	listFn       func() ([]driving.ConnectionSummary, error)
	resolveFn    func(string) (*domain.NamedConnection, error)
	whoamiFn     func(string) (*domain.User, error)
	subsFn       func(string) ([]domain.Subscription, error)
	setSubFn     func(name, sub string) (string, error)

	addReqs   []driving.AddConnectionRequest
	loginReqs []driving.LoginRequest
}

var _ driving.ConnectionService = (*mockConnectionService)(nil)

func (m *mockConnectionService) Add(_ context.Context, req driving.AddConnectionRequest) (*domain.NamedConnection, error) {
	m.addReqs = append(m.addReqs, req)
	if m.addFn != nil {
		return m.addFn(req)
	}
	return &domain.NamedConnection{Name: req.Name, Connection: domain.NewConnection(req.Server)}, nil
}

func (m *mockConnectionService) Login(_ context.Context, req driving.LoginRequest) (*domain.NamedConnection, error) {
	m.loginReqs = append(m.loginReqs, req)
	if m.loginFn != nil {
		return m.loginFn(req)
	}
	return &domain.NamedConnection{Name: req.Name, Connection: domain.NewConnection("")}, nil
}

func (m *mockConnectionService) Remove(_ context.Context, name string) (bool, error) {
	if m.removeFn != nil {
		return m.removeFn(name)
	}
	return false, nil
}

func (m *mockConnectionService) SetDefault(_ context.Context, name string) error {
	if m.setDefaultFn != nil {
		return m.setDefaultFn(name)
	}
	return nil
}

func (m *mockConnectionService) List(_ context.Context) ([]driving.ConnectionSummary, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, nil
}

func (m *mockConnectionService) Resolve(_ context.Context, name string) (*domain.NamedConnection, error) {
	if m.resolveFn != nil {
		return m.resolveFn(name)
	}
	return &domain.NamedConnection{Name: name, Connection: domain.NewConnection("")}, nil
}

func (m *mockConnectionService) BearerToken(_ context.Context, _ string) (string, error) {
	return "token", nil
}

func (m *mockConnectionService) WhoAmI(_ context.Context, name string) (*domain.User, error) {
	if m.whoamiFn != nil {
		return m.whoamiFn(name)
	}
	return &domain.User{}, nil
}

func (m *mockConnectionService) Subscriptions(_ context.Context, name string) ([]domain.Subscription, error) {
	if m.subsFn != nil {
		return m.subsFn(name)
	}
	return nil, nil
}

func (m *mockConnectionService) SetDefaultSubscription(_ context.Context, name, sub string) (string, error) {
	if m.setSubFn != nil {
		return m.setSubFn(name, sub)
	}
	return sub, nil
}

// recordingSource is a CredentialSource that records its prompt.
type recordingSource struct {
	prompt string
}

func (r *recordingSource) Fetch(_ context.Context) (string, error) {
	return "prompted", nil
}

// withServices installs svc for the duration of the test.
func withServices(t *testing.T, svc driving.ConnectionService, path string) {
	t.Helper()
	oldSvc, oldPath := connectionService, configPath
	SetServices(&Services{Connection: svc, ConfigPath: path})
	t.Cleanup(func() {
		connectionService, configPath = oldSvc, oldPath
	})
}

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose = false
	connectionFlag = ""
	pathExists = false
	pathValidate = false
	addUsername = ""
	addPassword = ""
	addDefault = true
	addOAuthFlow = "device"
	loginFlow = ""
	loginPassword = ""
	listOutput = "table"
	subscriptionOutput = "table"
}

// runCommand executes the root command with args and captures its output.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func namedConnection(name, server, username string, auth *domain.AuthData) *domain.NamedConnection {
	conn := domain.NewConnection(server)
	conn.Username = username
	conn.Auth = auth
	return &domain.NamedConnection{Name: name, Connection: conn}
}

func subscription(name string) domain.Subscription {
	return domain.Subscription{AccountName: name, AccountID: uuid.New(), Permissions: []string{"read"}}
}
