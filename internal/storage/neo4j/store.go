// Package neo4j implements the repository ports on a Neo4j graph. Interviews
// hang off their application through HAS_INTERVIEW relationships.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	pkgneo4j "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/neo4j"
)

var _ repository.Store = (*Store)(nil)

// work is one unit of Cypher run inside a managed transaction
type work func(ctx context.Context, tx neo4j.ManagedTransaction) error

// executor runs work either in its own transaction or in an enclosing one
type executor interface {
	read(ctx context.Context, w work) error
	write(ctx context.Context, w work) error
	now() time.Time
}

// Store is a repository.Store backed by Neo4j
type Store struct {
	client *pkgneo4j.Client
	clock  func() time.Time
}

// NewStore wraps client and makes sure the schema constraints exist
func NewStore(ctx context.Context, client *pkgneo4j.Client) (*Store, error) {
	s := &Store{client: client, clock: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT job_id IF NOT EXISTS FOR (j:Job) REQUIRE j.id IS UNIQUE`,
		`CREATE CONSTRAINT application_id IF NOT EXISTS FOR (a:Application) REQUIRE a.id IS UNIQUE`,
		`CREATE CONSTRAINT interview_id IF NOT EXISTS FOR (i:Interview) REQUIRE i.id IS UNIQUE`,
		`CREATE CONSTRAINT settings_company IF NOT EXISTS FOR (c:CompanySettings) REQUIRE c.company_id IS UNIQUE`,
		`CREATE CONSTRAINT notification_id IF NOT EXISTS FOR (n:Notification) REQUIRE n.id IS UNIQUE`,
		`CREATE INDEX interview_slot IF NOT EXISTS FOR (i:Interview) ON (i.application_id, i.job_id, i.mode)`,
		`CREATE INDEX question_interview IF NOT EXISTS FOR (q:Question) ON (q.interview_id)`,
		`CREATE INDEX notification_receiver IF NOT EXISTS FOR (n:Notification) ON (n.receiver_id)`,
	}

	session := s.client.NewSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
	}
	return nil
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func (s *Store) read(ctx context.Context, w work) error {
	session := s.client.NewSession(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, w(ctx, tx)
	})
	return err
}

func (s *Store) write(ctx context.Context, w work) error {
	session := s.client.NewSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, w(ctx, tx)
	})
	return err
}

// WithinTx runs fn in one managed write transaction. The driver may retry
// fn on transient cluster errors, so fn must not have outside effects.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	return s.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		return fn(ctx, repos{exec: txExecutor{tx: tx, clock: s.now}})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func (s *Store) Jobs() repository.JobRepository                   { return repos{exec: s}.Jobs() }
func (s *Store) Applications() repository.ApplicationRepository   { return repos{exec: s}.Applications() }
func (s *Store) Interviews() repository.InterviewRepository       { return repos{exec: s}.Interviews() }
func (s *Store) Settings() repository.SettingsRepository          { return repos{exec: s}.Settings() }
func (s *Store) Notifications() repository.NotificationRepository { return repos{exec: s}.Notifications() }
func (s *Store) QnA() repository.QnARepository                    { return repos{exec: s}.QnA() }

type repos struct {
	exec executor
}

func (r repos) Jobs() repository.JobRepository                   { return &jobRepo{exec: r.exec} }
func (r repos) Applications() repository.ApplicationRepository   { return &applicationRepo{exec: r.exec} }
func (r repos) Interviews() repository.InterviewRepository       { return &interviewRepo{exec: r.exec} }
func (r repos) Settings() repository.SettingsRepository          { return &settingsRepo{exec: r.exec} }
func (r repos) Notifications() repository.NotificationRepository { return &notificationRepo{exec: r.exec} }
func (r repos) QnA() repository.QnARepository                    { return &qnaRepo{exec: r.exec} }

// txExecutor runs everything in the enclosing transaction
type txExecutor struct {
	tx    neo4j.ManagedTransaction
	clock func() time.Time
}

func (t txExecutor) read(ctx context.Context, w work) error  { return w(ctx, t.tx) }
func (t txExecutor) write(ctx context.Context, w work) error { return w(ctx, t.tx) }
func (t txExecutor) now() time.Time                          { return t.clock() }

// collect runs cypher and buffers every record
func collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Collect(ctx)
}

// count runs a query returning a single integer column "n"
func count(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (int, error) {
	records, err := collect(ctx, tx, cypher, params)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	n, _, err := neo4j.GetRecordValue[int64](records[0], "n")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func nodeProps(rec *neo4j.Record, key string) (map[string]any, error) {
	node, _, err := neo4j.GetRecordValue[neo4j.Node](rec, key)
	if err != nil {
		return nil, err
	}
	return node.Props, nil
}
