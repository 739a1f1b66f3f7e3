package web

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=1"`
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logrus.New())})
}

func TestParamID(t *testing.T) {
	app := newApp()
	app.Get("/x/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(id)
	})

	cases := map[string]int{"/x/7": 200, "/x/0": 400, "/x/abc": 400, "/x/-1": 400}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestQueryIDAbsentIsZero(t *testing.T) {
	app := newApp()
	app.Get("/q", func(c *fiber.Ctx) error {
		id, err := QueryID(c, "assetTypeId")
		if err != nil {
			return err
		}
		return c.JSON(id)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/q", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/q?assetTypeId=x", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestBindValidates(t *testing.T) {
	app := newApp()
	app.Post("/b", func(c *fiber.Ctx) error {
		var s sample
		if err := Bind(c, &s); err != nil {
			return err
		}
		return c.JSON(s)
	})

	req := httptest.NewRequest("POST", "/b", strings.NewReader(`{"name":"a","count":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("POST", "/b", strings.NewReader(`{"name":"a","count":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
