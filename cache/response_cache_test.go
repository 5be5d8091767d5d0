package cache

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjiri1684/teacheron/testutil"
)

func newApp(rc *ResponseCache, calls *int) *fiber.App {
	app := fiber.New()
	app.Get("/tutors", rc.Middleware(GroupTutors), func(c *fiber.Ctx) error {
		*calls++
		return c.JSON(fiber.Map{"calls": *calls, "subject": c.Query("subject")})
	})
	app.Get("/missing", rc.Middleware(GroupTutors), func(c *fiber.Ctx) error {
		*calls++
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})
	return app
}

func get(t *testing.T, app *fiber.App, target string) (string, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.Header.Get("X-Cache"), string(body)
}

func TestMiddlewareCachesAndInvalidates(t *testing.T) {
	client, _ := testutil.Redis(t)
	rc := New(client, time.Minute, testutil.Logger())
	calls := 0
	app := newApp(rc, &calls)

	state, first := get(t, app, "/tutors?subject=math&location=nairobi")
	assert.Equal(t, "MISS", state)

	state, second := get(t, app, "/tutors?location=nairobi&subject=math")
	assert.Equal(t, "HIT", state, "query order must not change the key")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	state, _ = get(t, app, "/tutors?subject=physics")
	assert.Equal(t, "MISS", state)
	assert.Equal(t, 2, calls)

	require.NoError(t, rc.Invalidate(context.Background(), GroupTutors))

	state, _ = get(t, app, "/tutors?subject=math&location=nairobi")
	assert.Equal(t, "MISS", state)
	assert.Equal(t, 3, calls)
}

func TestMiddlewareSkipsErrors(t *testing.T) {
	client, mr := testutil.Redis(t)
	rc := New(client, time.Minute, testutil.Logger())
	calls := 0
	app := newApp(rc, &calls)

	get(t, app, "/missing")
	get(t, app, "/missing")
	assert.Equal(t, 2, calls)
	assert.Empty(t, mr.Keys())
}

func TestInvalidateLeavesOtherGroups(t *testing.T) {
	client, _ := testutil.Redis(t)
	rc := New(client, time.Minute, testutil.Logger())
	ctx := context.Background()

	require.NoError(t, rc.Invalidate(ctx, GroupTutors))
	require.NoError(t, rc.Invalidate(ctx, GroupTutors))

	gen, err := rc.generation(ctx, GroupTutors)
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)
	gen, err = rc.generation(ctx, GroupJobs)
	require.NoError(t, err)
	assert.Zero(t, gen)
}

func TestStaleWriteAfterInvalidateIsNotServed(t *testing.T) {
	client, _ := testutil.Redis(t)
	rc := New(client, time.Minute, testutil.Logger())
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	app := fiber.New()
	app.Get("/tutors", rc.Middleware(GroupTutors), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			close(entered)
			<-release
			return c.JSON(fiber.Map{"rating": "stale"})
		}
		return c.JSON(fiber.Map{"rating": "fresh"})
	})

	done := make(chan string)
	go func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/tutors", nil), -1)
		if err != nil {
			done <- err.Error()
			return
		}
		body, _ := io.ReadAll(resp.Body)
		done <- string(body)
	}()

	<-entered
	require.NoError(t, rc.Invalidate(ctx, GroupTutors))
	close(release)
	assert.Contains(t, <-done, "stale")

	state, body := get(t, app, "/tutors")
	assert.Equal(t, "MISS", state)
	assert.Contains(t, body, "fresh")
}

func TestNilClientIsPassThrough(t *testing.T) {
	rc := New(nil, time.Minute, testutil.Logger())
	calls := 0
	app := newApp(rc, &calls)

	get(t, app, "/tutors")
	get(t, app, "/tutors")
	assert.Equal(t, 2, calls)
	assert.NoError(t, rc.Invalidate(context.Background(), GroupTutors))
}
