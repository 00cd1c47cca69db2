package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/arbor/config"
	"github.com/grovetools/arbor/errors"
	"github.com/grovetools/arbor/logging"
	"github.com/grovetools/arbor/metadata"
	"github.com/grovetools/arbor/prompt"
)

// OutcomeKind classifies how a Resolve call ended.
type OutcomeKind string

const (
	// OutcomeResumed means an existing session was resumed.
	OutcomeResumed OutcomeKind = "resumed"

	// OutcomeCreated means a new session was created.
	OutcomeCreated OutcomeKind = "created"

	// OutcomeCreatedExpired means the provider no longer recognized the
	// stored session, so a new one was started under the same identifier.
	OutcomeCreatedExpired OutcomeKind = "created_expired"

	// OutcomeNoSession means no provider has any session for the worktree;
	// the caller should run setup first. Nothing was mutated.
	OutcomeNoSession OutcomeKind = "no_session"
)

// Outcome is the result of resolving an AI-agent session.
type Outcome struct {
	Kind         OutcomeKind
	Provider     string
	SessionID    string
	WorktreeName string
}

// Request names the worktree to resolve and the task to hand the agent.
type Request struct {
	// Root is the directory whose children are candidate worktrees.
	Root string

	// Identifier is a worktree id, name, or path.
	Identifier string

	// TaskDescription feeds the {{task_description}} template variable and
	// is passed as the prompt on resume.
	TaskDescription string
}

// Resolver decides resume-vs-create for AI-agent sessions. It is
// deterministic over the two documents it reads: the worktree metadata and
// the global agent config.
type Resolver struct {
	store     *metadata.Store
	providers map[string]Provider
	log       *logrus.Entry

	// injectable for tests
	newID func() string
	now   func() time.Time
}

// NewResolver creates a Resolver over the given provider set.
func NewResolver(store *metadata.Store, providers map[string]Provider) *Resolver {
	return &Resolver{
		store:     store,
		providers: providers,
		log:       logging.NewLogger("session"),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Resolve inspects the worktree's record for the active provider and either
// resumes it or creates a new session. The force/permission flag from the
// config is passed straight through to the provider call; it never
// participates in the resume-vs-create decision.
func (r *Resolver) Resolve(ctx context.Context, cfg *config.AgentConfig, req Request) (*Outcome, error) {
	md, provider, err := r.prepare(cfg, req)
	if err != nil {
		return nil, err
	}

	force := cfg.PermissionMode
	record := md.Session(provider.Name())

	if record.Live() {
		return r.resume(ctx, cfg, md, provider, record, req.TaskDescription, force)
	}

	if !md.HasAnySession() {
		// The worktree was never set up for AI sessions; report rather
		// than silently creating one.
		return &Outcome{
			Kind:         OutcomeNoSession,
			Provider:     provider.Name(),
			WorktreeName: md.Name,
		}, nil
	}

	// Another provider owns a session but the active one does not:
	// provider switch. Create for the active provider, leaving the other
	// provider's record untouched.
	return r.create(ctx, cfg, md, provider, "", req.TaskDescription, force, OutcomeCreated)
}

// Setup unconditionally creates a session for the active provider. It is
// the entry point Resolve's no-session guidance points at.
func (r *Resolver) Setup(ctx context.Context, cfg *config.AgentConfig, req Request) (*Outcome, error) {
	md, provider, err := r.prepare(cfg, req)
	if err != nil {
		return nil, err
	}

	return r.create(ctx, cfg, md, provider, "", req.TaskDescription, cfg.PermissionMode, OutcomeCreated)
}

// prepare resolves the worktree and the active provider. Nothing is mutated.
func (r *Resolver) prepare(cfg *config.AgentConfig, req Request) (*metadata.WorktreeMetadata, Provider, error) {
	md, err := r.store.Lookup(req.Root, req.Identifier)
	if err != nil {
		return nil, nil, err
	}

	name := cfg.ActiveProvider()
	provider, ok := r.providers[name]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeInternal, fmt.Sprintf("no provider registered for '%s'", name))
	}
	if !provider.IsAvailable() {
		return nil, nil, errors.ProviderUnavailable(name)
	}

	return md, provider, nil
}

func (r *Resolver) resume(ctx context.Context, cfg *config.AgentConfig, md *metadata.WorktreeMetadata, provider Provider, record *metadata.SessionRecord, task string, force bool) (*Outcome, error) {
	r.log.WithFields(logrus.Fields{
		"worktree": md.Name,
		"provider": provider.Name(),
		"session":  record.SessionID,
	}).Info("Resuming session")

	err := provider.Resume(ctx, md.Path, record.SessionID, task, force)
	if err == nil {
		field := metadata.SessionFieldName(provider.Name())
		mergeErr := r.store.MergeField(md.Path, field, map[string]interface{}{
			"last_resumed_at": r.now(),
		})
		if mergeErr != nil {
			return nil, mergeErr
		}

		return &Outcome{
			Kind:         OutcomeResumed,
			Provider:     provider.Name(),
			SessionID:    record.SessionID,
			WorktreeName: md.Name,
		}, nil
	}

	if stderrors.Is(err, ErrUnknownSession) {
		// The provider forgot the session. Fall back to CREATE, reusing
		// the identifier so the worktree's history stays traceable.
		r.log.WithFields(logrus.Fields{
			"worktree": md.Name,
			"session":  record.SessionID,
		}).Info("Session expired on provider side, starting a new one")
		return r.create(ctx, cfg, md, provider, record.SessionID, task, force, OutcomeCreatedExpired)
	}

	return nil, errors.SessionResume(provider.Name(), record.SessionID, err)
}

// create persists a new enabled SessionRecord for the provider, records the
// provider switch in global config, and launches the CLI with the rendered
// prompt. reuseID keeps the previous identifier on expiry fallback; empty
// mints a new one.
func (r *Resolver) create(ctx context.Context, cfg *config.AgentConfig, md *metadata.WorktreeMetadata, provider Provider, reuseID, task string, force bool, kind OutcomeKind) (*Outcome, error) {
	sessionID := reuseID
	if sessionID == "" {
		sessionID = r.newID()
	}

	template := cfg.PromptTemplate
	if template == "" {
		template = prompt.DefaultTemplate
	}

	branch := md.GitInfo.CurrentBranch
	if branch == "" {
		branch = md.Branch
	}

	rendered := prompt.Render(template, prompt.Variables{
		TaskDescription: task,
		Branch:          branch,
		BaseBranch:      md.GitInfo.BaseBranch,
		WorktreePath:    md.Path,
		WorktreeName:    md.Name,
	})

	now := r.now()
	field := metadata.SessionFieldName(provider.Name())
	err := r.store.MergeField(md.Path, field, map[string]interface{}{
		"enabled":         true,
		"session_id":      sessionID,
		"created_at":      now,
		"prompt_template": template,
	})
	if err != nil {
		return nil, err
	}
	md.SetSession(provider.Name(), &metadata.SessionRecord{
		Enabled:        true,
		SessionID:      sessionID,
		CreatedAt:      now,
		PromptTemplate: template,
	})

	cfg.LastUsedProvider = provider.Name()
	if err := cfg.Save(); err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"worktree": md.Name,
		"provider": provider.Name(),
		"session":  sessionID,
	}).Info("Launching new session")

	if err := provider.Launch(ctx, md.Path, sessionID, rendered, force); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, fmt.Sprintf("failed to launch %s session for worktree %s", provider.Name(), md.Name))
	}

	return &Outcome{
		Kind:         kind,
		Provider:     provider.Name(),
		SessionID:    sessionID,
		WorktreeName: md.Name,
	}, nil
}
