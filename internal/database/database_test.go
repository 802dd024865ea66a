package database

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/deppfellow/projects/internal/config"
	"github.com/deppfellow/projects/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Database: config.DatabaseConfig{
			Host:           "127.0.0.1",
			Port:           1,
			User:           "projects",
			Password:       "p@ss:word",
			Name:           "projects",
			SSLMode:        "disable",
			ConnectTimeout: 2 * time.Second,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(testConfig().Database)

	u, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "127.0.0.1:1", u.Host)
	assert.Equal(t, "/projects", u.Path)
	assert.Equal(t, "projects", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss:word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "2", u.Query().Get("connect_timeout"))
}

func TestDSN_IPv6(t *testing.T) {
	cfg := testConfig().Database
	cfg.Host = "::1"
	cfg.ConnectTimeout = 0

	dsn := DSN(cfg)

	assert.Contains(t, dsn, "@[::1]:1/")
	assert.NotContains(t, dsn, "connect_timeout")
}

func TestDSN_EscapesDatabaseName(t *testing.T) {
	cfg := testConfig().Database
	cfg.Name = "dev?db#1"

	parsed, err := pgx.ParseConfig(DSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "dev?db#1", parsed.Database)
	assert.Equal(t, "p@ss:word", parsed.Password)
	assert.Nil(t, parsed.TLSConfig, "sslmode=disable must survive")
	assert.Equal(t, 2*time.Second, parsed.ConnectTimeout)
}

func TestReadSnapshot(t *testing.T) {
	assert.Equal(t, pgx.RepeatableRead, ReadSnapshot.IsoLevel)
	assert.Equal(t, pgx.ReadOnly, ReadSnapshot.AccessMode)
}

func TestProvider_ConnectFailureIsConnectionError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	provider := New(testConfig(), &log, nil)

	conn, err := provider.Connect(context.Background())
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.True(t, errors.Is(err, errs.ErrConnection))

	assert.Contains(t, buf.String(), "unable to connect to the database")
	assert.NotContains(t, buf.String(), "p@ss:word")

	assert.True(t, errors.Is(provider.Ping(context.Background()), errs.ErrConnection))
}

type failingConnector struct {
	err error
}

func (f failingConnector) Connect(context.Context) (*pgx.Conn, error) {
	return nil, f.err
}

func TestWithTx_ConnectionErrorReturnedUntouched(t *testing.T) {
	connErr := errs.NewConnectionError("Unable to connect", errors.New("refused"))
	called := false

	err := WithTx(context.Background(), failingConnector{err: connErr}, ReadSnapshot, func(pgx.Tx) error {
		called = true
		return nil
	})

	assert.Same(t, connErr, err)
	assert.False(t, called, "fn must not run without a connection")
}

func TestNullableHelpers(t *testing.T) {
	assert.Nil(t, NullableString(nil))
	s := "notes"
	assert.Equal(t, "notes", NullableString(&s))

	assert.Nil(t, NullableInt(nil))
	i := 4
	assert.Equal(t, 4, NullableInt(&i))

	assert.Nil(t, NullableDecimal(decimal.NullDecimal{}))
	got := NullableDecimal(decimal.NewNullDecimal(decimal.RequireFromString("1.005")))
	assert.Equal(t, "1.01", got.(decimal.Decimal).StringFixed(2))
}

type recordingTracer struct {
	started, ended int
}

func (r *recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	r.started++
	return ctx
}

func (r *recordingTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {
	r.ended++
}

func TestMultiTracer_CallsEveryTracer(t *testing.T) {
	first, second := &recordingTracer{}, &recordingTracer{}
	mt := &multiTracer{tracers: []any{first, "not a tracer", second}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 1, first.started)
	assert.Equal(t, 1, second.ended)
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracer := newSlowQueryTracer(&log, 100*time.Millisecond)
	tracer.now = func() time.Time { return now }

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{})
	now = now.Add(50 * time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})
	assert.Empty(t, buf.String())

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{})
	now = now.Add(250 * time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("UPDATE 1")})
	assert.Contains(t, buf.String(), "slow database statement")
	assert.Contains(t, buf.String(), "UPDATE 1")
}
