// Package exec runs shell commands as a dispatch target, locally or over
// SSH. Sessions are cached per host so consecutive proposals against the
// same machine reuse one shell.
package exec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/quorly/service/action/system"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// Service executes terminal commands on local or remote hosts.
type Service struct {
	sessions map[string]*session
	mux      sync.Mutex
}

type session struct {
	service *gosh.Service
}

// New creates a new Service instance
func New() *Service {
	return &Service{
		sessions: make(map[string]*session),
	}
}

// Execute runs the input commands in order, collecting per-command and
// combined output.
func (s *Service) Execute(ctx context.Context, input *Input, output *Output) error {
	input.Init()

	aSession, err := s.getSession(ctx, input.Host, input.Env)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if input.Workdir != "" {
		if _, _, err := aSession.service.Run(ctx, fmt.Sprintf("cd %s", input.Workdir)); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
	}

	abortOnError := true
	if input.AbortOnError != nil {
		abortOnError = *input.AbortOnError
	}
	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}

	commands := make([]*Command, 0, len(input.Commands))
	var combinedStdout, combinedStderr strings.Builder
	var lastStatus int

	for _, cmd := range input.Commands {
		stdout, stderr, status := s.runCommand(ctx, aSession, cmd, timeout)
		commands = append(commands, &Command{
			Input:  cmd,
			Output: stdout,
			Stderr: stderr,
			Status: status,
		})
		if stdout != "" {
			combinedStdout.WriteString(stdout)
			combinedStdout.WriteString("\n")
		}
		if stderr != "" {
			combinedStderr.WriteString(stderr)
			combinedStderr.WriteString("\n")
		}
		lastStatus = status
		if abortOnError && status != 0 {
			break
		}
	}

	output.Commands = commands
	output.Stdout = strings.TrimSpace(combinedStdout.String())
	output.Stderr = strings.TrimSpace(combinedStderr.String())
	output.Status = lastStatus
	return nil
}

// runCommand runs a single command and splits its outcome into stdout or
// stderr depending on the exit status.
func (s *Service) runCommand(ctx context.Context, aSession *session, command string, timeout time.Duration) (string, string, int) {
	stdout, status, err := aSession.service.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
	if status == 0 && err == nil {
		return stdout, "", status
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	if status == 0 {
		status = 1
	}
	return "", stdout, status
}

// getSession retrieves an existing session or creates a new one
func (s *Service) getSession(ctx context.Context, host *system.Host, env map[string]string) (*session, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if existing, ok := s.sessions[host.URL]; ok {
		return existing, nil
	}

	envOptions := []runner.Option{}
	if len(env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(env))
	}

	var service *gosh.Service
	var err error
	if host.IsLocal() || url.Host(host.URL) == "localhost" {
		service, err = gosh.New(ctx, local.New(envOptions...))
	} else {
		var config *ssh.ClientConfig
		if config, err = s.sshConfig(ctx, host); err != nil {
			return nil, fmt.Errorf("failed to get SSH config: %w", err)
		}
		sshHost := url.Host(host.URL)
		if !strings.Contains(sshHost, ":") {
			sshHost += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(sshHost, config, envOptions...))
	}
	if err != nil {
		return nil, err
	}

	created := &session{service: service}
	s.sessions[host.URL] = created
	return created, nil
}

// sshConfig builds an SSH client config from the host's scy credentials.
func (s *Service) sshConfig(ctx context.Context, host *system.Host) (*ssh.ClientConfig, error) {
	credentials := host.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Close releases all sessions held by this service
func (s *Service) Close(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []string
	for id, aSession := range s.sessions {
		if err := aSession.service.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to close session %s: %v", id, err))
		}
	}
	s.sessions = make(map[string]*session)
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}
