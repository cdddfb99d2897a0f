package generation_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/generation"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUser = "a1b2c3d4e5"
	courseID = "c0ffee5678"
)

// Three units for a four-module outline: the last one is synthesized.
const modelPlan = `{"units": [
  {"unitNumber": 1, "title": "Go Basics", "chapters": [
    {"title": "Syntax", "description": "d", "youtubeSearchQuery": "go syntax"},
    {"title": "Types", "description": "d"}
  ]},
  {"unitNumber": 2, "title": "Functions", "chapters": [
    {"title": "", "description": "no title"},
    {"title": "Closures"}
  ]},
  {"unitNumber": 3, "title": "Concurrency", "chapters": []}
]}`

var testSettings = config.GenerationSettings{
	UnitConcurrency:    2,
	VideoConcurrency:   2,
	ReadingConcurrency: 2,
	JobConcurrency:     2,
	MaxAttempts:        3,
	JobTimeout:         30 * time.Second,
	StaleAfter:         5 * time.Minute,
	SweepSchedule:      "@every 1h",
}

type env struct {
	db       *gorm.DB
	provider *testutil.Provider
	gen      *generation.GenerationContainer
	router   http.Handler
	outline  *outline.GenCourse
}

func modelReply(req llm.Request) (string, error) {
	if req.Purpose == "plan" {
		return modelPlan, nil
	}
	return "# Reading\n\nGenerated material.", nil
}

func newEnv(t *testing.T) *env {
	ctx := context.Background()
	db := testutil.NewDB(t)
	provider := testutil.NewProvider(modelReply)

	images, err := search.NewImageSearcher(ctx, "", "", time.Second)
	require.NoError(t, err)
	videos, err := search.NewVideoSearcher(ctx, "", time.Second)
	require.NoError(t, err)

	outlines := outline.NewRepository(db)
	gen := generation.NewGenerationContainer(db, outlines, course.NewRepository(db), provider, images, videos, testSettings)
	t.Cleanup(func() { _ = gen.Close() })

	g := &outline.GenCourse{
		UserID:   testUser,
		CourseID: courseID,
		Title:    "Learning Go",
		Modules: []outline.Module{
			{Week: 1, Title: "Basics", Objectives: outline.Objectives{"syntax"}},
			{Week: 2, Title: "Functions"},
			{Week: 3, Title: "Concurrency"},
			{Week: 4, Title: "Testing", Objectives: outline.Objectives{"table tests", "fakes"}},
		},
	}
	require.NoError(t, outlines.Create(ctx, g))

	r := chi.NewRouter()
	r.Route("/generate-course/{user_id}", func(r chi.Router) {
		generation.Register(r, gen.Handler)
	})
	return &env{db: db, provider: provider, gen: gen, router: r, outline: g}
}

func (e *env) status(t *testing.T) (int, generation.StatusView) {
	rec := testutil.Do(t, e.router, http.MethodGet, "/generate-course/"+testUser+"/"+courseID+"/status", testUser, nil)
	return rec.Code, testutil.Decode[generation.StatusView](t, rec)
}

func (e *env) units(t *testing.T) []course.Unit {
	units, err := course.NewRepository(e.db).ListUnits(context.Background(), courseID)
	require.NoError(t, err)
	return units
}

func (e *env) job(t *testing.T) *generation.Job {
	j, err := generation.NewRepository(e.db).GetByCourse(context.Background(), courseID)
	require.NoError(t, err)
	require.NotNil(t, j)
	return j
}

func TestGenerateCourse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	target := "/generate-course/" + testUser + "/" + courseID + "/" + e.outline.ID

	t.Run("Confirm", func(t *testing.T) {
		rec := testutil.Do(t, e.router, http.MethodGet, target, testUser, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Course found", testutil.Decode[generation.ConfirmResponse](t, rec).Message)

		rec = testutil.Do(t, e.router, http.MethodGet, "/generate-course/"+testUser+"/"+courseID+"/missing", testUser, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec := testutil.Do(t, e.router, http.MethodPost, target, testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := testutil.Decode[generation.AcceptResponse](t, rec)
	assert.True(t, accepted.Started)
	assert.Equal(t, "Course details generation started", accepted.Message)
	require.NotEmpty(t, accepted.JobID)

	code, view := e.status(t)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, generation.StateGenerating, view.Status)
	assert.Equal(t, 4, view.Progress.TotalIntendedUnits)
	assert.Zero(t, view.Progress.Percent)
	require.NotNil(t, view.Job)
	assert.Equal(t, generation.StatusQueued, view.Job.Status)

	var c course.Course
	require.NoError(t, e.db.First(&c, "course_id = ?", courseID).Error)
	assert.Equal(t, search.FallbackImageURL, c.Image)
	assert.Equal(t, e.outline.ID, c.GenID)

	require.True(t, e.gen.Worker.Process(ctx, accepted.JobID))
	assert.False(t, e.gen.Worker.Process(ctx, accepted.JobID), "a finished job cannot be claimed again")

	units := e.units(t)
	require.Len(t, units, 4)
	for i, u := range units {
		assert.Equal(t, i+1, u.Position)
		assert.NotEmpty(t, u.Chapters, "unit %d", u.Position)
		for _, ch := range u.Chapters {
			assert.NotEmpty(t, ch.Name)
			assert.Equal(t, search.FallbackVideoURL, ch.YoutubeVidLink)
			assert.Equal(t, "# Reading\n\nGenerated material.", ch.ReadingMaterial)
			assert.False(t, ch.IsCompleted)
		}
	}
	assert.Equal(t, "Go Basics", units[0].Name)
	assert.Len(t, units[0].Chapters, 2)
	assert.Len(t, units[1].Chapters, 1)
	assert.Equal(t, "Closures", units[1].Chapters[0].Name)
	assert.Equal(t, "Introduction to Concurrency", units[2].Chapters[0].Name)
	assert.Equal(t, "Testing", units[3].Name)

	assert.Equal(t, 1, e.provider.Calls("plan"))
	assert.Equal(t, 5, e.provider.Calls("reading"))

	code, view = e.status(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, generation.StateCompleted, view.Status)
	assert.Equal(t, 100, view.Progress.Percent)
	assert.Equal(t, 4, view.Progress.CompletedUnits)
	assert.Equal(t, 5, view.Progress.TotalChapters)
	assert.Equal(t, generation.StatusCompleted, view.Job.Status)
	assert.Equal(t, 1, view.Job.Attempts)

	t.Run("AcceptAgainIsHarmless", func(t *testing.T) {
		rec := testutil.Do(t, e.router, http.MethodPost, target, testUser, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, accepted.JobID, testutil.Decode[generation.AcceptResponse](t, rec).JobID)
		assert.Len(t, e.units(t), 4)

		var jobs, courses int64
		require.NoError(t, e.db.Model(&generation.Job{}).Count(&jobs).Error)
		require.NoError(t, e.db.Model(&course.Course{}).Count(&courses).Error)
		assert.Equal(t, int64(1), jobs)
		assert.Equal(t, int64(1), courses)
	})

	t.Run("EditAfterAccept", func(t *testing.T) {
		outlines := outline.NewOutlineContainer(outline.NewRepository(e.db), e.provider, e.gen.Service)
		_, _, err := outlines.Service.Update(ctx, testUser, courseID, outline.UpdateDTO{Title: "x", Modules: e.outline.Modules})
		assert.ErrorIs(t, err, outline.ErrAlreadyAccepted)
	})

	t.Run("Acknowledge", func(t *testing.T) {
		rec := testutil.Do(t, e.router, http.MethodPost, "/generate-course/"+testUser+"/"+courseID+"/status", testUser, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, testutil.Decode[generation.AcknowledgeResponse](t, rec).Success)

		rec = testutil.Do(t, e.router, http.MethodPost, "/generate-course/"+testUser+"/0000000000/status", testUser, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResumeSkipsStoredUnits(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)

	courses := course.NewRepository(e.db)
	kept := &course.Unit{CourseID: courseID, Position: 1, Name: "Already built",
		Chapters: []course.Chapter{{Position: 1, Name: "Existing chapter"}}}
	require.NoError(t, courses.CreateUnit(ctx, kept))
	empty := &course.Unit{CourseID: courseID, Position: 2, Name: "Half written"}
	require.NoError(t, courses.CreateUnit(ctx, empty))

	require.True(t, e.gen.Worker.Process(ctx, jobID))

	units := e.units(t)
	require.Len(t, units, 4)
	assert.Equal(t, kept.UnitID, units[0].UnitID)
	assert.Equal(t, "Already built", units[0].Name)
	assert.NotEqual(t, empty.UnitID, units[1].UnitID)
	assert.NotEmpty(t, units[1].Chapters)

	// Units 2, 3 and 4 have one chapter each.
	assert.Equal(t, 3, e.provider.Calls("reading"))
	assert.Equal(t, generation.StatusCompleted, e.job(t).Status)
}

func TestStoredPlanIsReused(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)

	plan := []generation.PlannedUnit{{Title: "Stored unit", Chapters: []generation.PlannedChapter{{Title: "Stored chapter"}}}}
	require.NoError(t, generation.NewRepository(e.db).SavePlan(ctx, jobID, plan))

	require.True(t, e.gen.Worker.Process(ctx, jobID))
	assert.Zero(t, e.provider.Calls("plan"))

	units := e.units(t)
	require.Len(t, units, 4)
	assert.Equal(t, "Stored unit", units[0].Name)
	assert.Equal(t, "Stored chapter", units[0].Chapters[0].Name)
}

func TestFailureRetriesThenFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)
	require.NoError(t, e.db.Delete(&outline.GenCourse{}, "course_id = ?", courseID).Error)

	for attempt := 1; attempt < testSettings.MaxAttempts; attempt++ {
		require.True(t, e.gen.Worker.Process(ctx, jobID))
		j := e.job(t)
		assert.Equal(t, generation.StatusQueued, j.Status, "attempt %d", attempt)
		assert.Equal(t, attempt, j.Attempts)
		assert.Contains(t, j.Error, "outline")
	}
	require.True(t, e.gen.Worker.Process(ctx, jobID))
	j := e.job(t)
	assert.Equal(t, generation.StatusFailed, j.Status)
	assert.NotNil(t, j.FinishedAt)

	code, view := e.status(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, generation.StateFailed, view.Status)
	assert.Contains(t, view.Job.Error, "outline")

	t.Run("StartResetsFailedJob", func(t *testing.T) {
		require.NoError(t, outline.NewRepository(e.db).Create(ctx, &outline.GenCourse{
			ID: e.outline.ID, UserID: testUser, CourseID: courseID, Title: e.outline.Title, Modules: e.outline.Modules,
		}))

		again, err := e.gen.Service.Start(ctx, e.outline)
		require.NoError(t, err)
		assert.Equal(t, jobID, again)

		j := e.job(t)
		assert.Equal(t, generation.StatusQueued, j.Status)
		assert.Zero(t, j.Attempts)
		assert.Empty(t, j.Error)

		require.True(t, e.gen.Worker.Process(ctx, jobID))
		assert.Equal(t, generation.StatusCompleted, e.job(t).Status)
	})
}

func TestClaimIsExclusive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)

	jobs := generation.NewRepository(e.db)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := jobs.Claim(ctx, jobID, time.Now().UTC())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, e.job(t).Attempts)
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, jobID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, jobID)
}

func TestSweeper(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	jobs := generation.NewRepository(e.db)

	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)

	stale := time.Now().UTC().Add(-time.Hour)
	ok, err := jobs.Claim(ctx, jobID, stale)
	require.NoError(t, err)
	require.True(t, ok)

	dispatcher := &recordingDispatcher{}
	sweeper := generation.NewSweeper(jobs, dispatcher, testSettings.StaleAfter, testSettings.MaxAttempts, testSettings.SweepSchedule)

	require.NoError(t, sweeper.Sweep(ctx))
	j := e.job(t)
	assert.Equal(t, generation.StatusQueued, j.Status)
	assert.Equal(t, "worker stopped responding", j.Error)
	assert.Equal(t, []string{jobID}, dispatcher.ids)

	t.Run("FreshHeartbeatUntouched", func(t *testing.T) {
		ok, err := jobs.Claim(ctx, jobID, time.Now().UTC())
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, sweeper.Sweep(ctx))
		assert.Equal(t, generation.StatusRunning, e.job(t).Status)
	})

	t.Run("OutOfAttempts", func(t *testing.T) {
		require.NoError(t, e.db.Model(&generation.Job{}).Where("job_id = ?", jobID).Updates(map[string]interface{}{
			"attempts":     testSettings.MaxAttempts,
			"heartbeat_at": stale,
		}).Error)

		require.NoError(t, sweeper.Sweep(ctx))
		j := e.job(t)
		assert.Equal(t, generation.StatusFailed, j.Status)
		assert.NotNil(t, j.FinishedAt)
	})
}

func TestWorkerConsumesDispatches(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, e.gen.Worker.Subscribe(ctx))
	jobID, err := e.gen.Service.Start(ctx, e.outline)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- e.gen.Worker.Run(ctx) }()

	// No sweep: the dispatch published between Subscribe and Run must be delivered.
	require.Eventually(t, func() bool {
		j, err := generation.NewRepository(e.db).Get(context.Background(), jobID)
		return err == nil && j != nil && j.Status == generation.StatusCompleted
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Len(t, e.units(t), 4)
}

func TestShutdownDoesNotSpendAttempts(t *testing.T) {
	e := newEnv(t)

	jobID, err := e.gen.Service.Start(context.Background(), e.outline)
	require.NoError(t, err)

	for i := 0; i < testSettings.MaxAttempts+1; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		e.provider.Reply = func(llm.Request) (string, error) {
			cancel()
			return "", context.Canceled
		}
		require.True(t, e.gen.Worker.Process(ctx, jobID))
		cancel()

		j := e.job(t)
		assert.Equal(t, generation.StatusQueued, j.Status, "restart %d", i)
		assert.Zero(t, j.Attempts, "restart %d", i)
		assert.Nil(t, j.FinishedAt)
	}

	e.provider.Reply = modelReply
	require.True(t, e.gen.Worker.Process(context.Background(), jobID))
	j := e.job(t)
	assert.Equal(t, generation.StatusCompleted, j.Status)
	assert.Equal(t, 1, j.Attempts)
}

func TestStatusWithoutJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	courses := course.NewRepository(e.db)
	_, _, err := courses.Ensure(ctx, &course.Course{CourseID: courseID, UserID: testUser, GenID: e.outline.ID, Title: "Learning Go"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, courses.CreateUnit(ctx, &course.Unit{CourseID: courseID, Position: i, Name: "u",
			Chapters: []course.Chapter{{Position: 1, Name: "c"}}}))
	}
	code, view := e.status(t)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, 75, view.Progress.Percent)
	assert.Nil(t, view.Job)

	require.NoError(t, courses.CreateUnit(ctx, &course.Unit{CourseID: courseID, Position: 4, Name: "u",
		Chapters: []course.Chapter{{Position: 1, Name: "c"}}}))
	code, view = e.status(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, generation.StateCompleted, view.Status)

	t.Run("UnknownCourse", func(t *testing.T) {
		rec := testutil.Do(t, e.router, http.MethodGet, "/generate-course/"+testUser+"/0000000000/status", testUser, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
