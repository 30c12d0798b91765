package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scuola-app/scuola-api/internal/models"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses      map[string]*models.Course
	approvedCall int
	lastRanked   bool
	lastLimit    int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]*models.Course{}}
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "c-" + course.CourseName
	}
	clone := *course
	f.courses[course.ID] = &clone
	return nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *course
	return &clone, nil
}

func (f *fakeCourseRepo) ListApproved(_ context.Context, byStudents bool, limit int) ([]models.Course, error) {
	f.approvedCall++
	f.lastRanked = byStudents
	f.lastLimit = limit
	var out []models.Course
	for _, c := range f.courses {
		if c.Status == models.CourseStatusApproved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListAll(_ context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCourseRepo) ListByInstructor(_ context.Context, email string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.InstructorEmail == email {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) UpdateFields(_ context.Context, id string, update models.CourseUpdate) error {
	course, ok := f.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.CourseName = update.CourseName
	course.Status = update.Status
	return nil
}

func (f *fakeCourseRepo) SetStatus(_ context.Context, id string, status models.CourseStatus) error {
	course, ok := f.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Status = status
	return nil
}

func (f *fakeCourseRepo) SetFeedback(_ context.Context, id, feedback string) error {
	course, ok := f.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Feedback = feedback
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

type fakeUserReader struct {
	users map[string]*models.User
}

func (f *fakeUserReader) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

type fakeCache struct {
	entries map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
		f.deletes = append(f.deletes, key)
	}
	return nil
}

func newTestCourseService(repo *fakeCourseRepo, cache *fakeCache) *CourseService {
	users := &fakeUserReader{users: map[string]*models.User{}}
	var c catalogCache
	if cache != nil {
		c = cache
	}
	return NewCourseService(repo, users, c, nil, nil, 6, 5*time.Minute)
}

func TestCourseServiceSubmitForcesPending(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := newTestCourseService(repo, nil)

	course, err := svc.Submit(context.Background(), SubmitCourseRequest{
		CourseName:      "Drawing 101",
		InstructorEmail: "teacher@example.com",
		AvailableSeats:  10,
	})
	require.NoError(t, err)
	require.Equal(t, models.CourseStatusPending, course.Status)
	require.Equal(t, models.CourseStatusPending, repo.courses[course.ID].Status)
}

func TestCourseServicePublicCatalogExcludesUnapproved(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c-1"] = &models.Course{ID: "c-1", Status: models.CourseStatusApproved}
	repo.courses["c-2"] = &models.Course{ID: "c-2", Status: models.CourseStatusPending}
	repo.courses["c-3"] = &models.Course{ID: "c-3", Status: models.CourseStatusDenied}
	svc := newTestCourseService(repo, nil)

	courses, err := svc.PublicCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "c-1", courses[0].ID)
}

func TestCourseServicePopularCoursesCaches(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c-1"] = &models.Course{ID: "c-1", Status: models.CourseStatusApproved, TotalStudents: 40}
	cache := newFakeCache()
	svc := newTestCourseService(repo, cache)

	first, err := svc.PopularCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, repo.lastRanked)
	require.Equal(t, 6, repo.lastLimit)
	require.Equal(t, 1, repo.approvedCall)

	second, err := svc.PopularCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	// served from cache, no second store read
	require.Equal(t, 1, repo.approvedCall)
}

func TestCourseServiceModerationInvalidatesPopularCache(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c-1"] = &models.Course{ID: "c-1", Status: models.CourseStatusPending}
	cache := newFakeCache()
	cache.entries[PopularCoursesCacheKey] = []byte(`[]`)
	svc := newTestCourseService(repo, cache)

	require.NoError(t, svc.Approve(context.Background(), "c-1"))
	require.Equal(t, models.CourseStatusApproved, repo.courses["c-1"].Status)
	require.Contains(t, cache.deletes, PopularCoursesCacheKey)
}

func TestCourseServiceDenyAndFeedback(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c-1"] = &models.Course{ID: "c-1", Status: models.CourseStatusPending}
	svc := newTestCourseService(repo, nil)

	require.NoError(t, svc.Deny(context.Background(), "c-1"))
	require.Equal(t, models.CourseStatusDenied, repo.courses["c-1"].Status)

	require.NoError(t, svc.Feedback(context.Background(), "c-1", FeedbackRequest{Feedback: "needs a syllabus"}))
	require.Equal(t, "needs a syllabus", repo.courses["c-1"].Feedback)
}

func TestCourseServiceModerateUnknownCourse(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)

	err := svc.Approve(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestCourseServiceInstructorProfileNotFound(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)

	_, err := svc.InstructorProfile(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestCourseServiceInstructorProfileResolvesCourses(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c-1"] = &models.Course{ID: "c-1", InstructorEmail: "teacher@example.com", Status: models.CourseStatusApproved}
	users := &fakeUserReader{users: map[string]*models.User{
		"u-1": {ID: "u-1", Email: "teacher@example.com", Role: models.RoleTeacher},
	}}
	svc := NewCourseService(repo, users, nil, nil, nil, 6, 0)

	profile, err := svc.InstructorProfile(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "teacher@example.com", profile.Instructor.Email)
	require.Len(t, profile.Courses, 1)
}
