package intelligence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-navigator/internal/plans"
	"business-navigator/internal/shared/storage/db"
	"business-navigator/internal/shared/storage/db/dbtest"
	"business-navigator/internal/tasks"
	"business-navigator/internal/users"
)

func TestRepoSourceOverSQLRepos(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	expect := func(query string, n int, args ...any) {
		e := mock.ExpectQuery(regexp.QuoteMeta(query))
		if len(args) > 0 {
			vals := make([]driver.Value, len(args))
			for i, a := range args {
				vals[i] = a
			}
			e = e.WithArgs(vals...)
		}
		e.WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
	}
	expect("SELECT COUNT(*) FROM users", 1)
	expect("SELECT COUNT(*) FROM business_plans", 2)
	expect("SELECT COUNT(*) FROM tasks", 10)
	expect("SELECT COUNT(*) FROM tasks WHERE completed = $1", 9, true)
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1", 5, "High")
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1", 3, "Medium")
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1", 2, "Low")
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1 AND completed = $2", 5, "High", true)
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1 AND completed = $2", 2, "Medium", true)
	expect("SELECT COUNT(*) FROM tasks WHERE priority = $1 AND completed = $2", 2, "Low", true)

	report, err := NewBuilder(sqlSource(database, db.Postgres), nil, DefaultThresholds()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MomentumHigh, report.Derived.ExecutionMomentum)
	assert.Equal(t, []RecommendationType{TypeGrowth}, types(report.Recommendations))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoSourceSQLErrorAbortsBuild(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM business_plans")).
		WillReturnError(errors.New("relation does not exist"))

	_, err = NewBuilder(sqlSource(database, db.Postgres), nil, DefaultThresholds()).Build(context.Background())
	require.ErrorIs(t, err, ErrDataAccess)
	var dae *DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.Equal(t, KindBusinessPlan, dae.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func sqlSource(database *sql.DB, dialect db.Dialect) RepoSource {
	return RepoSource{
		Users: users.NewSQLRepo(database, dialect),
		Plans: plans.NewSQLRepo(database, dialect),
		Tasks: tasks.NewSQLRepo(database, dialect),
	}
}

func seedStores(t *testing.T, userRepo users.Repo, planRepo plans.Repo, taskRepo tasks.Repo) {
	t.Helper()
	ctx := context.Background()
	owner, err := userRepo.Upsert(ctx, users.User{Email: "founder@example.com", Name: "Founder"})
	require.NoError(t, err)
	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	var planIDs []string
	for i := 0; i < 2; i++ {
		p, err := planRepo.Create(ctx, plans.BusinessPlan{
			UserID:       owner.ID,
			Title:        []string{"Coffee Cart", "Bike Repair"}[i],
			BusinessIdea: "Idea",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		planIDs = append(planIDs, p.ID)
	}
	items := []tasks.Task{}
	for i := 0; i < 10; i++ {
		pr := tasks.PriorityHigh
		if i >= 5 {
			pr = tasks.PriorityMedium
		}
		if i >= 8 {
			pr = tasks.PriorityLow
		}
		items = append(items, tasks.Task{
			UserID:         owner.ID,
			BusinessPlanID: planIDs[i%2],
			Title:          "task",
			Priority:       pr,
			Phase:          "MVP",
			Completed:      i == 0 || i == 5 || i == 8,
		})
	}
	_, err = taskRepo.CreateMany(ctx, items)
	require.NoError(t, err)
}

func TestRepoSourceMemoryAndSQLAgree(t *testing.T) {
	ctx := context.Background()

	userMem := users.NewMemoryRepo()
	planMem := plans.NewMemoryRepo(func(ctx context.Context, id string) (string, error) {
		u, err := userMem.GetByID(ctx, id)
		return u.DisplayName(), err
	})
	taskMem := tasks.NewMemoryRepo()
	seedStores(t, userMem, planMem, taskMem)
	memReport, err := NewBuilder(
		RepoSource{Users: userMem, Plans: planMem, Tasks: taskMem},
		PlanActivity{Plans: planMem},
		DefaultThresholds(),
	).Build(ctx)
	require.NoError(t, err)

	database := dbtest.OpenSQLite(t)
	planSQL := plans.NewSQLRepo(database, db.SQLite)
	seedStores(t, users.NewSQLRepo(database, db.SQLite), planSQL, tasks.NewSQLRepo(database, db.SQLite))
	sqlReport, err := NewBuilder(
		sqlSource(database, db.SQLite),
		PlanActivity{Plans: planSQL},
		DefaultThresholds(),
	).Build(ctx)
	require.NoError(t, err)

	want := Counts{
		UserCount: 1, PlanCount: 2, TaskCount: 10, CompletedTasks: 3,
		HighPriorityTasks: 5, MediumPriorityTasks: 3, LowPriorityTasks: 2,
		HighPriorityCompleted: 1, MediumPriorityCompleted: 1, LowPriorityCompleted: 1,
	}
	assert.Equal(t, want, memReport.Counts)
	assert.Equal(t, want, sqlReport.Counts)
	assert.Equal(t, memReport.Recommendations, sqlReport.Recommendations)

	for _, r := range []AggregateReport{memReport, sqlReport} {
		require.Len(t, r.RecentActivity, 2)
		assert.Equal(t, "Bike Repair", r.RecentActivity[0].Title)
		assert.Equal(t, "Founder", r.RecentActivity[0].User)
	}
}
