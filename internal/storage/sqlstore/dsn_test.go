package sqlstore_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
)

func TestNormalizeSQLiteDSN(t *testing.T) {
	full := "file:recruito.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate"

	tests := []struct {
		name, in, want string
	}{
		{"bare file", "file:recruito.db", full},
		{"plain path", "recruito.db", full},
		{"already complete", full, full},
		{
			"keeps operator settings",
			"file:recruito.db?_pragma=busy_timeout(500)&_txlock=deferred",
			"file:recruito.db?_pragma=busy_timeout(500)&_txlock=deferred&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		},
		{
			"memory",
			":memory:",
			":memory:?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlstore.NormalizeSQLiteDSN(tt.in))
		})
	}

	assert.Equal(t, full, sqlstore.SQLiteDSN("recruito.db"))
}

func TestOpenWithDefaultStyleDSNSerializesWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recruito.db")

	cfg, err := config.FromEnv(func(k string) string {
		switch k {
		case "SESSION_SECRET":
			return "dsn-secret"
		case "STORE_DSN":
			return "file:" + path
		}
		return ""
	})
	require.NoError(t, err)
	require.Equal(t, "file:"+path, cfg.Store.DSN)

	store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, Migrate: cfg.Store.Migrate})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	const writers = 8
	fixtures := make([]fixture, writers)
	for i := range fixtures {
		fixtures[i] = seed(t, store)
	}

	var (
		wg   sync.WaitGroup
		gate = make(chan struct{})
		errs = make([]error, writers)
	)
	for i := range fixtures {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			f := fixtures[i]
			errs[i] = store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
				if _, err := tx.Applications().Get(ctx, f.app.ID); err != nil {
					return err
				}
				if err := tx.Applications().Lock(ctx, f.app.ID); err != nil {
					return err
				}
				id, err := tx.Interviews().Add(ctx, newInterview(f, domain.ModeAI))
				if err != nil {
					return err
				}
				return tx.Applications().AttachInterview(ctx, f.app.ID, id)
			})
		}(i)
	}
	close(gate)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "writer %d", i)
	}
}
