package highscore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepo проверяет общий контракт всех реализаций
func exerciseRepo(t *testing.T, repo Repo) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.Reset(ctx))

	value, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, value)

	stored, err := repo.RecordMax(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, stored)

	stored, err = repo.RecordMax(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, stored, "меньшая высота не должна перезаписывать рекорд")

	stored, err = repo.RecordMax(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, stored)

	value, found, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 12, value)

	_, err = repo.RecordMax(ctx, -1)
	assert.ErrorIs(t, err, ErrNegativeScore)

	require.NoError(t, repo.Reset(ctx))
	_, found, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryRepo(t *testing.T) {
	exerciseRepo(t, NewMemoryRepo())
}

func TestMemoryRepo_ZeroIsRecorded(t *testing.T) {
	repo := NewMemoryRepo()
	stored, err := repo.RecordMax(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)

	_, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBadgerRepo_InMemory(t *testing.T) {
	repo, err := NewBadgerRepo("", "")
	require.NoError(t, err)
	defer repo.Close()

	exerciseRepo(t, repo)
}

func TestBadgerRepo_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewBadgerRepo(dir, DefaultKey)
	require.NoError(t, err)
	_, err = repo.RecordMax(context.Background(), 17)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewBadgerRepo(dir, DefaultKey)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 17, value)
}

func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("STACK_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	repo, err := NewRedisRepo(ctx, addr, "StackHighestScoreTest")
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer repo.Close()

	exerciseRepo(t, repo)
}

func TestMariaRepo(t *testing.T) {
	dsn := os.Getenv("STACK_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("STACK_TEST_MYSQL_DSN не задан")
	}

	repo, err := NewMariaRepo(context.Background(), dsn, "StackHighestScoreTest")
	if err != nil {
		t.Skipf("MariaDB not available: %v", err)
	}
	defer repo.Close()

	exerciseRepo(t, repo)
}

func TestPostgresRepo(t *testing.T) {
	dsn := os.Getenv("STACK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STACK_TEST_POSTGRES_DSN не задан")
	}

	repo, err := NewPostgresRepo(context.Background(), dsn, "StackHighestScoreTest")
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer repo.Close()

	exerciseRepo(t, repo)
}

func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("STACK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STACK_TEST_MONGO_URI не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo, err := NewMongoRepo(ctx, uri, "arstack_test", "StackHighestScoreTest")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	defer repo.Close()

	exerciseRepo(t, repo)
}
