//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/projects/internal/config"
	"github.com/deppfellow/projects/internal/database"
	"github.com/deppfellow/projects/internal/errs"
	"github.com/deppfellow/projects/internal/model"
	"github.com/deppfellow/projects/internal/repository"
	"github.com/deppfellow/projects/internal/service"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	provider *database.Provider
	dsn      string
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("projects"),
		postgres.WithUsername("projects"),
		postgres.WithPassword("projects"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start PostgreSQL container: %v\n", err)
		return 1
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		return 1
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		return 1
	}

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Database: config.DatabaseConfig{
			Host:           host,
			Port:           port.Int(),
			User:           "projects",
			Password:       "projects",
			Name:           "projects",
			SSLMode:        "disable",
			ConnectTimeout: 10 * time.Second,
		},
		Observability: config.DefaultObservabilityConfig(),
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.WarnLevel)
	provider = database.New(cfg, &log, nil)
	dsn = database.DSN(cfg.Database)

	if err := database.Migrate(ctx, &log, provider); err != nil {
		fmt.Fprintf(os.Stderr, "failed to apply schema: %v\n", err)
		return 1
	}

	return m.Run()
}

func resetTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	conn, err := provider.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "TRUNCATE project, category RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func hours(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	log := zerolog.Nop()
	require.NoError(t, database.Migrate(context.Background(), &log, provider))
}

func TestInsertThenFetchByID_RoundTrip(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	inserted, err := repo.InsertProject(ctx, &model.Project{
		ProjectName:    "Hang a door",
		EstimatedHours: hours("4"),
		ActualHours:    hours("3.456"),
		Difficulty:     intPtr(3),
		Notes:          strPtr("Use the new hinges"),
	})
	require.NoError(t, err)
	require.Positive(t, inserted.ProjectID)

	fetched, found, err := repo.FetchProjectByID(ctx, inserted.ProjectID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, inserted.ProjectID, fetched.ProjectID)
	assert.Equal(t, "Hang a door", fetched.ProjectName)
	assert.Equal(t, "4.00", model.FormatHours(fetched.EstimatedHours))
	assert.Equal(t, "3.46", model.FormatHours(fetched.ActualHours))
	assert.Equal(t, 3, *fetched.Difficulty)
	assert.Equal(t, "Use the new hinges", *fetched.Notes)
}

func TestInsert_NullableColumns(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	inserted, err := repo.InsertProject(ctx, &model.Project{ProjectName: "Sketch"})
	require.NoError(t, err)

	fetched, found, err := repo.FetchProjectByID(ctx, inserted.ProjectID)
	require.NoError(t, err)
	require.True(t, found)

	assert.False(t, fetched.EstimatedHours.Valid)
	assert.False(t, fetched.ActualHours.Valid)
	assert.Nil(t, fetched.Difficulty)
	assert.Nil(t, fetched.Notes)
}

func TestFetchAllProjects_OrderedByName(t *testing.T) {
	orders := [][]string{
		{"Cabinet", "Abacus", "Bench"},
		{"Bench", "Cabinet", "Abacus"},
	}

	for _, names := range orders {
		t.Run(fmt.Sprint(names), func(t *testing.T) {
			resetTables(t)
			ctx := context.Background()
			repo := repository.NewProjectRepository(provider)

			for _, name := range names {
				_, err := repo.InsertProject(ctx, &model.Project{ProjectName: name})
				require.NoError(t, err)
			}

			projects, err := repo.FetchAllProjects(ctx)
			require.NoError(t, err)

			got := make([]string, 0, len(projects))
			for _, p := range projects {
				got = append(got, p.ProjectName)
				assert.Nil(t, p.Materials, "fetch-all does not load children")
			}
			assert.Equal(t, []string{"Abacus", "Bench", "Cabinet"}, got)
		})
	}
}

func TestNotFoundContract(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)
	svc := service.NewProjectService(repo)

	project, found, err := repo.FetchProjectByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, project)

	modified, err := repo.ModifyProjectDetails(ctx, &model.Project{ProjectID: 999, ProjectName: "ghost"})
	require.NoError(t, err)
	assert.False(t, modified)

	deleted, err := repo.DeleteProject(ctx, 999)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.FetchProjectByID(ctx, 999)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Contains(t, err.Error(), "999")

	err = svc.ModifyProjectDetails(ctx, &model.Project{ProjectID: 999, ProjectName: "ghost"})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	err = svc.DeleteProject(ctx, 999)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestInsert_FailingChildLeavesNoProject(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	_, err := repo.InsertProject(ctx, &model.Project{
		ProjectName: "Doomed",
		Steps:       []model.Step{{StepText: "Start", StepOrder: 1}},
		Categories:  []model.Category{{CategoryID: 4242}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrStatement))

	var appErr *errs.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CATEGORY_NOT_FOUND", appErr.Code)

	projects, err := repo.FetchAllProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestFetchByID_AggregatesChildren(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	projects := repository.NewProjectRepository(provider)
	categories := repository.NewCategoryRepository(provider)

	woodwork, err := categories.InsertCategory(ctx, &model.Category{CategoryName: "Woodwork"})
	require.NoError(t, err)

	full, err := projects.InsertProject(ctx, &model.Project{
		ProjectName: "Bookshelf",
		Materials: []model.Material{
			{MaterialName: "Plank", NumRequired: intPtr(6), Cost: hours("12.5")},
			{MaterialName: "Screws", NumRequired: intPtr(24)},
		},
		Steps: []model.Step{
			{StepText: "Assemble", StepOrder: 3},
			{StepText: "Cut", StepOrder: 1},
			{StepText: "Sand", StepOrder: 2},
		},
		Categories: []model.Category{*woodwork},
	})
	require.NoError(t, err)

	empty, err := projects.InsertProject(ctx, &model.Project{ProjectName: "Empty"})
	require.NoError(t, err)

	got, found, err := projects.FetchProjectByID(ctx, full.ProjectID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Len(t, got.Materials, 2)
	assert.Equal(t, "12.50", model.FormatHours(got.Materials[0].Cost))
	require.Len(t, got.Steps, 3)
	assert.Equal(t, []string{"Cut", "Sand", "Assemble"},
		[]string{got.Steps[0].StepText, got.Steps[1].StepText, got.Steps[2].StepText})
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Woodwork", got.Categories[0].CategoryName)

	other, found, err := projects.FetchProjectByID(ctx, empty.ProjectID)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotNil(t, other.Materials)
	assert.NotNil(t, other.Steps)
	assert.NotNil(t, other.Categories)
	assert.Empty(t, other.Materials)
	assert.Empty(t, other.Steps)
	assert.Empty(t, other.Categories)
}

// statementHook records every statement and calls afterProjectRow once,
// right after the project row of a fetch-by-id has been read.
type statementHook struct {
	statements      []string
	afterProjectRow func()
	fired           bool
}

func (h *statementHook) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	h.statements = append(h.statements, data.SQL)
	return ctx
}

func (h *statementHook) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {
	last := h.statements[len(h.statements)-1]
	if h.fired || !strings.Contains(last, "project_name") || !strings.Contains(last, "WHERE project_id") {
		return
	}
	h.fired = true
	h.afterProjectRow()
}

type hookedConnector struct {
	hook *statementHook
}

func (c hookedConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.Tracer = c.hook

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pgxdecimal.Register(conn.TypeMap())
	return conn, nil
}

func TestFetchByID_ConcurrentDeleteDoesNotSplitTheRead(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	inserted, err := repo.InsertProject(ctx, &model.Project{
		ProjectName: "Bookshelf",
		Materials: []model.Material{
			{MaterialName: "Plank"},
			{MaterialName: "Screws"},
		},
		Steps: []model.Step{{StepText: "Cut", StepOrder: 1}},
	})
	require.NoError(t, err)

	var deleted bool
	var deleteErr error
	hook := &statementHook{afterProjectRow: func() {
		deleted, deleteErr = repo.DeleteProject(ctx, inserted.ProjectID)
	}}

	got, found, err := repository.NewProjectRepository(hookedConnector{hook: hook}).
		FetchProjectByID(ctx, inserted.ProjectID)
	require.NoError(t, err)
	require.NoError(t, deleteErr)
	require.True(t, hook.fired)
	assert.True(t, deleted)

	require.True(t, found)
	assert.Len(t, got.Materials, 2)
	assert.Len(t, got.Steps, 1)

	require.NotEmpty(t, hook.statements)
	assert.Equal(t, "begin isolation level repeatable read read only", hook.statements[0])

	_, found, err = repo.FetchProjectByID(ctx, inserted.ProjectID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestModifyProjectDetails_KeepsIDAndChildren(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	inserted, err := repo.InsertProject(ctx, &model.Project{
		ProjectName: "Fence",
		Steps:       []model.Step{{StepText: "Dig holes", StepOrder: 1}},
	})
	require.NoError(t, err)

	modified, err := repo.ModifyProjectDetails(ctx, &model.Project{
		ProjectID:      inserted.ProjectID,
		ProjectName:    "Garden fence",
		EstimatedHours: hours("10"),
		Difficulty:     intPtr(2),
	})
	require.NoError(t, err)
	assert.True(t, modified)

	got, _, err := repo.FetchProjectByID(ctx, inserted.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, inserted.ProjectID, got.ProjectID)
	assert.Equal(t, "Garden fence", got.ProjectName)
	assert.Equal(t, "10.00", model.FormatHours(got.EstimatedHours))
	assert.Len(t, got.Steps, 1)
}

func TestDeleteProject_CascadesToChildren(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(provider)

	inserted, err := repo.InsertProject(ctx, &model.Project{
		ProjectName: "Birdhouse",
		Materials:   []model.Material{{MaterialName: "Nails"}},
		Steps:       []model.Step{{StepText: "Nail", StepOrder: 1}},
	})
	require.NoError(t, err)

	deleted, err := repo.DeleteProject(ctx, inserted.ProjectID)
	require.NoError(t, err)
	assert.True(t, deleted)

	conn, err := provider.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	var remaining int
	require.NoError(t, conn.QueryRow(ctx,
		"SELECT (SELECT count(*) FROM material) + (SELECT count(*) FROM step)").Scan(&remaining))
	assert.Zero(t, remaining)
}

func TestCategories(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewCategoryRepository(provider)

	for _, name := range []string{"Painting", "Electrical"} {
		_, err := repo.InsertCategory(ctx, &model.Category{CategoryName: name})
		require.NoError(t, err)
	}

	_, err := repo.InsertCategory(ctx, &model.Category{CategoryName: "Painting"})
	require.Error(t, err)

	var appErr *errs.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CATEGORY_ALREADY_EXISTS", appErr.Code)

	all, err := repo.FetchAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Electrical", all[0].CategoryName)
	assert.Equal(t, "Painting", all[1].CategoryName)
}
