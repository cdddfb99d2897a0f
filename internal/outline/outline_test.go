package outline_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/testutil"
	util "github.com/grivax/grivax-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "a1b2c3d4e5"

const modelOutline = "Sure! Here is your course:\n```json\n" + `{
  "title": "Intro to Go",
  "description": "Learn Go from scratch",
  "modules": [
    {"week": 1, "title": "Basics", "objectives": ["syntax", "types"], "timeSpent": "3 hours"},
    {"title": "Concurrency", "objectives": "goroutines, channels", "timeSpent": 2}
  ]
}` + "\n```"

type fakeStarter struct {
	started bool
	calls   []*outline.GenCourse
}

func (f *fakeStarter) Started(context.Context, string) (bool, error) { return f.started, nil }

func (f *fakeStarter) Start(_ context.Context, g *outline.GenCourse) (string, error) {
	f.calls = append(f.calls, g)
	f.started = true
	return "job-1", nil
}

func newRouter(t *testing.T, provider *testutil.Provider, starter *fakeStarter) http.Handler {
	repo := outline.NewRepository(testutil.NewDB(t))
	c := outline.NewOutlineContainer(repo, provider, starter)

	r := chi.NewRouter()
	r.Route("/generate-course/{user_id}", func(r chi.Router) {
		outline.Register(r, c.Handler)
	})
	return r
}

func TestPace(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`6`, 6},
		{`6.9`, 6},
		{`"8 weeks"`, 8},
		{`"  3"`, 3},
		{`"weekly"`, outline.DefaultPace},
		{`0`, outline.DefaultPace},
		{`-2`, outline.DefaultPace},
		{`"-5 weeks"`, outline.DefaultPace},
		{`100`, outline.MaxPace},
		{`true`, outline.DefaultPace},
		{`null`, outline.DefaultPace},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var dto outline.GenerateDTO
			require.NoError(t, json.Unmarshal([]byte(`{"topic":"go","pace":`+tt.raw+`}`), &dto))
			assert.Equal(t, tt.want, dto.Pace.Weeks())
		})
	}

	t.Run("Missing", func(t *testing.T) {
		var dto outline.GenerateDTO
		require.NoError(t, json.Unmarshal([]byte(`{"topic":"go"}`), &dto))
		assert.Equal(t, outline.DefaultPace, dto.Pace.Weeks())
	})
}

func TestModuleDecoding(t *testing.T) {
	var m outline.Module
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","objectives":"a, b ,,c","timeSpent":1}`), &m))
	assert.Equal(t, outline.Objectives{"a", "b", "c"}, m.Objectives)
	assert.Equal(t, outline.TimeSpent("1 hour"), m.TimeSpent)
	assert.Equal(t, "a, b, c", m.Objectives.String())

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","objectives":["one"],"timeSpent":2.5}`), &m))
	assert.Equal(t, outline.TimeSpent("2.5 hours"), m.TimeSpent)
}

func TestGenerate(t *testing.T) {
	provider := testutil.Static(modelOutline)
	r := newRouter(t, provider, &fakeStarter{})

	rec := testutil.Do(t, r, http.MethodPost, "/generate-course/"+testUser+"/", testUser, map[string]interface{}{
		"topic": "Go", "difficulty": "beginner", "pace": "2 weeks",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := testutil.Decode[outline.GenerateResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, util.IsShortID(resp.CourseID))
	assert.Equal(t, "/generate-courses/"+testUser+"/"+resp.CourseID, resp.RedirectURL)
	require.Len(t, resp.CourseStructure.Modules, 2)
	assert.Equal(t, 2, resp.CourseStructure.Modules[1].Week)
	assert.Equal(t, outline.Objectives{"goroutines", "channels"}, resp.CourseStructure.Modules[1].Objectives)

	require.Len(t, provider.Requests, 1)
	assert.Equal(t, int32(4000), provider.Requests[0].MaxTokens)
	assert.Contains(t, provider.Requests[0].Messages[0].Content, "2 weeks")

	t.Run("Fetch", func(t *testing.T) {
		rec := testutil.Do(t, r, http.MethodGet, "/generate-course/"+testUser+"/"+resp.CourseID, testUser, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := testutil.Decode[outline.OutlineResponse](t, rec)
		assert.Equal(t, "Intro to Go", got.Title)
		assert.Len(t, got.Modules, 2)
	})

	t.Run("FetchOtherUser", func(t *testing.T) {
		rec := testutil.Do(t, r, http.MethodGet, "/generate-course/ffffffffff/"+resp.CourseID, "ffffffffff", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *testutil.Provider
	}{
		{"NoJSON", testutil.Static("I cannot help with that.")},
		{"BrokenJSON", testutil.Static(`{"title": "x", "modules": [`)},
		{"NoModules", testutil.Static(`{"title": "x", "modules": []}`)},
		{"ModelError", testutil.Failing(errors.New("quota exceeded"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(t, tt.provider, &fakeStarter{})
			rec := testutil.Do(t, r, http.MethodPost, "/generate-course/"+testUser+"/", testUser, map[string]interface{}{"topic": "Go"})
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Failed to process course generation request", testutil.Decode[map[string]string](t, rec)["error"])
			assert.Len(t, tt.provider.Requests, 1)
		})
	}

	t.Run("MissingTopic", func(t *testing.T) {
		provider := testutil.Static(modelOutline)
		r := newRouter(t, provider, &fakeStarter{})
		rec := testutil.Do(t, r, http.MethodPost, "/generate-course/"+testUser+"/", testUser, map[string]interface{}{"pace": 3})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, provider.Requests)
	})
}

func TestUpdate(t *testing.T) {
	starter := &fakeStarter{}
	r := newRouter(t, testutil.Static(modelOutline), starter)

	rec := testutil.Do(t, r, http.MethodPost, "/generate-course/"+testUser+"/", testUser, map[string]interface{}{"topic": "Go"})
	require.Equal(t, http.StatusOK, rec.Code)
	courseID := testutil.Decode[outline.GenerateResponse](t, rec).CourseID
	target := "/generate-course/" + testUser + "/" + courseID

	edit := map[string]interface{}{
		"title":       "Go in Depth",
		"description": "Edited",
		"modules":     []map[string]interface{}{{"week": 1, "title": "Only module", "objectives": []string{"a"}, "timeSpent": "1 hour"}},
	}

	rec = testutil.Do(t, r, http.MethodPost, target, testUser, edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := testutil.Decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Course data updated successfully", body["message"])
	assert.Equal(t, "job-1", body["job_id"])

	require.Len(t, starter.calls, 1)
	assert.Equal(t, "Go in Depth", starter.calls[0].Title)
	assert.Len(t, starter.calls[0].Modules, 1)

	t.Run("AfterStart", func(t *testing.T) {
		rec := testutil.Do(t, r, http.MethodPost, target, testUser, edit)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Course generation has already started", testutil.Decode[map[string]string](t, rec)["error"])
		assert.Len(t, starter.calls, 1)
	})

	t.Run("UnknownCourse", func(t *testing.T) {
		rec := testutil.Do(t, r, http.MethodPost, "/generate-course/"+testUser+"/0000000000", testUser, edit)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NoModules", func(t *testing.T) {
		rec := testutil.Do(t, r, http.MethodPost, target, testUser, map[string]interface{}{"title": "x", "modules": []interface{}{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
