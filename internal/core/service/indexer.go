package service

import (
	"context"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/api"
	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/sirupsen/logrus"
)

// RemoteClient is the part of the hosting API the indexer reads from.
type RemoteClient interface {
	ListCommits(ctx context.Context, owner, name string, since *time.Time) ([]api.Commit, error)
	GetCommitFiles(ctx context.Context, owner, name, sha string) ([]entities.FileModification, error)
	ListIssues(ctx context.Context, owner, name string) ([]entities.Issue, error)
}

// Progress receives per-commit progress while a repository is mined.
type Progress interface {
	Begin(label string, total int)
	Tick()
	Done()
}

type noProgress struct{}

func (noProgress) Begin(string, int) {}
func (noProgress) Tick()             {}
func (noProgress) Done()             {}

// Indexer mines commits and issues of the configured services into the store.
type Indexer struct {
	remote   RemoteClient
	repos    db.RepositoryStore
	users    db.UserStore
	issues   db.IssueStore
	commits  *CommitService
	services *ServiceManager
	repairer *Repairer
	progress Progress
	log      logrus.FieldLogger

	// holds a token while a MineService call runs
	running chan struct{}
}

// NewIndexer wires the indexer. repairer may be nil to skip the repair pass.
func NewIndexer(remote RemoteClient, repos db.RepositoryStore, users db.UserStore, issues db.IssueStore,
	commits *CommitService, services *ServiceManager, repairer *Repairer, log logrus.FieldLogger) *Indexer {
	return &Indexer{
		remote:   remote,
		repos:    repos,
		users:    users,
		issues:   issues,
		commits:  commits,
		services: services,
		repairer: repairer,
		progress: noProgress{},
		log:      log,
		running:  make(chan struct{}, 1),
	}
}

// WithProgress reports commit ingestion to p.
func (ix *Indexer) WithProgress(p Progress) *Indexer {
	if p != nil {
		ix.progress = p
	}
	return ix
}

func (ix *Indexer) MineTargets(ctx context.Context, targets []ServiceTarget) error {
	for _, t := range targets {
		if err := ix.MineService(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// MineService stores the service, mines each of its repositories and
// repairs their inconsistent file modifications. Calls are serialized; a
// caller waiting for a running call gives up when ctx is done.
func (ix *Indexer) MineService(ctx context.Context, t ServiceTarget) error {
	if err := t.Validate(); err != nil {
		return err
	}

	select {
	case ix.running <- struct{}{}:
	case <-ctx.Done():
		return errcodes.ErrContextCancelled
	}
	defer func() { <-ix.running }()

	start, _ := ParseDate(t.StartDate)
	end, _ := ParseDate(t.EndDate)
	exts := t.ResolvedExtensions()

	var serviceStart time.Time
	if start != nil {
		serviceStart = *start
	}
	if _, err := ix.services.InsertService(ctx, t.Name, serviceStart, end, exts); err != nil {
		return err
	}

	for _, rt := range t.Repositories {
		owner, name, _ := entities.ParseFullName(rt.Name)
		repo, err := ix.MineRepository(ctx, owner, name)
		if err != nil {
			return err
		}

		rs, _ := ParseDate(rt.StartDate)
		re, _ := ParseDate(rt.EndDate)
		link := entities.RepositoryLink{RepositoryID: repo.ID, StartDate: rs, EndDate: re, InitialLOC: rt.InitialLOC}
		if err := ix.services.InsertServiceRepository(ctx, t.Name, link); err != nil {
			return err
		}
		if err := ix.services.AddPatterns(ctx, t.Name, repo.ID, rt.Including, rt.Excluding); err != nil {
			return err
		}

		if ix.repairer != nil {
			stats, err := ix.repairer.Repair(ctx, repo, exts)
			if err != nil {
				return err
			}
			ix.log.WithFields(logrus.Fields{
				"repository": repo.FullName(),
				"commits":    stats.Commits,
				"files":      stats.Files,
			}).Info("repair finished")
		}
	}

	if start == nil {
		if _, err := ix.services.UpdateDates(ctx, t.Name, nil, end); err != nil {
			return err
		}
	}
	return nil
}

// MineRepository fetches commits newer than the latest stored one, along
// with their file modifications, and every issue of the repository.
func (ix *Indexer) MineRepository(ctx context.Context, owner, name string) (*entities.Repository, error) {
	repo, err := entities.NewRepository(owner, name, "")
	if err != nil {
		return nil, err
	}
	repo, err = ix.repos.SaveRepository(ctx, repo)
	if err != nil {
		return nil, err
	}
	log := ix.log.WithField("repository", repo.FullName())

	var since *time.Time
	last, err := ix.commits.GetCommitByPosition(ctx, repo.ID, -1)
	if err != nil {
		return nil, err
	}
	if last != nil {
		since = &last.Date
	}

	remote, err := ix.remote.ListCommits(ctx, owner, name, since)
	if err != nil {
		return nil, err
	}
	log.WithField("commits", len(remote)).Info("indexing commits")

	stored := 0
	ix.progress.Begin(repo.FullName(), len(remote))
	for _, rc := range remote {
		if err := ctx.Err(); err != nil {
			ix.progress.Done()
			return nil, errcodes.ErrContextCancelled
		}
		ok, err := ix.ingestCommit(ctx, repo, rc)
		if err != nil {
			ix.progress.Done()
			return nil, err
		}
		if ok {
			stored++
		}
		ix.progress.Tick()
	}
	ix.progress.Done()

	issues, err := ix.remote.ListIssues(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		if err := ix.ingestIssue(ctx, repo, &issues[i]); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{"stored": stored, "issues": len(issues)}).Info("repository indexed")
	return repo, nil
}

// ingestCommit stores a commit unless it is already stored with files.
func (ix *Indexer) ingestCommit(ctx context.Context, repo *entities.Repository, rc api.Commit) (bool, error) {
	existing, err := ix.commits.GetCommitByRepoSha(ctx, repo.ID, rc.SHA)
	if err != nil {
		return false, err
	}
	if existing != nil && len(existing.FileModifications) > 0 {
		return false, nil
	}

	author, err := ix.users.GetOrCreateUser(ctx, rc.Author)
	if err != nil {
		return false, err
	}

	files, err := ix.remote.GetCommitFiles(ctx, repo.Owner, repo.Name, rc.SHA)
	if err != nil {
		return false, err
	}

	commit, err := entities.NewCommit(rc.SHA, rc.Date, *author, rc.Message)
	if err != nil {
		return false, err
	}
	if err := commit.SetFileModifications(files); err != nil {
		return false, err
	}
	if err := commit.SetParents(rc.Parents); err != nil {
		return false, err
	}

	if _, err := ix.commits.InsertCommit(ctx, repo.ID, commit); err != nil {
		return false, err
	}
	return true, nil
}

func (ix *Indexer) ingestIssue(ctx context.Context, repo *entities.Repository, issue *entities.Issue) error {
	if issue.User.Identified() {
		user, err := ix.users.GetOrCreateUser(ctx, issue.User)
		if err != nil {
			return err
		}
		issue.User = *user
	}
	_, err := ix.issues.SaveIssue(ctx, repo.ID, issue)
	return err
}

// Monitor re-mines the targets on each tick until ctx is done. The ticker
// starts once ready is closed; a nil ready starts it at once.
func (ix *Indexer) Monitor(ctx context.Context, interval time.Duration, targets []ServiceTarget, ready <-chan struct{}) {
	if ready != nil {
		select {
		case <-ctx.Done():
			return
		case <-ready:
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ix.MineTargets(ctx, targets); err != nil {
				ix.log.WithError(err).Error("scheduled mining failed")
			}
		}
	}
}
