package web

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

type experienceBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	IsPublished bool   `json:"isPublished"`
	Config      struct {
		Objects []map[string]any `json:"objects"`
	} `json:"config"`
}

func (ts *testServer) createExperience(t *testing.T, token, title string) experienceBody {
	t.Helper()
	var exp experienceBody
	resp := ts.do(t, http.MethodPost, "/api/experiences", token, fiber.Map{"title": title, "description": "desc"}, &exp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return exp
}

func TestExperienceHandlers_CreateAndList(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")

	first := ts.createExperience(t, owner.Token, "First")
	assert.Equal(t, owner.ID, first.UserID)
	assert.False(t, first.IsPublished)
	assert.NotNil(t, first.Config.Objects)
	assert.Empty(t, first.Config.Objects)
	ts.createExperience(t, owner.Token, "Second")

	var list []experienceBody
	resp := ts.do(t, http.MethodGet, "/api/experiences", owner.Token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)

	var msg messageBody
	resp = ts.do(t, http.MethodPost, "/api/experiences", owner.Token, fiber.Map{"description": "no title"}, &msg)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required", msg.Message)
}

func TestExperienceHandlers_Ownership(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")
	other := ts.register(t, "other@example.com")
	exp := ts.createExperience(t, owner.Token, "Gallery")

	resp := ts.do(t, http.MethodGet, "/api/experiences/"+exp.ID, owner.Token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msg messageBody
	resp = ts.do(t, http.MethodGet, "/api/experiences/"+exp.ID, other.Token, nil, &msg)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized", msg.Message)

	admin := &user.User{ID: primitive.NewObjectID(), Role: user.RoleAdmin, Email: "admin@example.com"}
	ts.users.Add(admin)
	adminToken, err := ts.server.tokens.AccessToken(admin)
	require.NoError(t, err)
	resp = ts.do(t, http.MethodGet, "/api/experiences/"+exp.ID, adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/experiences/"+primitive.NewObjectID().Hex(), owner.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/experiences/not-an-id", owner.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExperienceHandlers_Save(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")
	exp := ts.createExperience(t, owner.Token, "Gallery")

	var saved experienceBody
	resp := ts.do(t, http.MethodPut, "/api/experiences/"+exp.ID, owner.Token, fiber.Map{
		"config": fiber.Map{"objects": []fiber.Map{
			{"id": "a", "type": "model", "url": "https://cdn.example/a.glb", "name": "Chair", "position": []float64{1, 0, -2}},
			{"id": "b", "kind": "image", "contentRef": "https://cdn.example/p.png", "displayName": "Poster"},
		}},
	}, &saved)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Gallery", saved.Title)
	assert.Equal(t, "desc", saved.Description)
	require.Len(t, saved.Config.Objects, 2)
	assert.Equal(t, "Chair", saved.Config.Objects[0]["name"])
	assert.Equal(t, []any{1.0, 0.0, -2.0}, saved.Config.Objects[0]["position"])
	assert.Equal(t, "image", saved.Config.Objects[1]["type"])
	assert.Equal(t, "https://cdn.example/p.png", saved.Config.Objects[1]["url"])

	resp = ts.do(t, http.MethodPut, "/api/experiences/"+exp.ID, owner.Token, fiber.Map{"title": "Renamed"}, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", saved.Title)
	assert.Len(t, saved.Config.Objects, 2)
}

func TestExperienceHandlers_SaveRejectsMalformedConfig(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")
	exp := ts.createExperience(t, owner.Token, "Gallery")

	var msg messageBody
	resp := ts.do(t, http.MethodPut, "/api/experiences/"+exp.ID, owner.Token, fiber.Map{
		"config": fiber.Map{"objects": []fiber.Map{
			{"id": "a", "type": "primitive-box"},
			{"type": "model"},
		}},
	}, &msg)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, msg.Message, "missing id")

	var stored experienceBody
	ts.do(t, http.MethodGet, "/api/experiences/"+exp.ID, owner.Token, nil, &stored)
	assert.Empty(t, stored.Config.Objects)
}

func TestExperienceHandlers_SaveRejectsWrongVectorSize(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")
	exp := ts.createExperience(t, owner.Token, "Gallery")

	var msg messageBody
	resp := ts.do(t, http.MethodPut, "/api/experiences/"+exp.ID, owner.Token, fiber.Map{
		"config": fiber.Map{"objects": []fiber.Map{
			{"id": "a", "type": "primitive-box", "scale": []float64{2}},
		}},
	}, &msg)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, msg.Message, "vector needs 3 components")

	var stored experienceBody
	ts.do(t, http.MethodGet, "/api/experiences/"+exp.ID, owner.Token, nil, &stored)
	assert.Empty(t, stored.Config.Objects)
}

func TestExperienceHandlers_PublishAndView(t *testing.T) {
	ts := newTestServer(t, testConfig())
	owner := ts.register(t, "owner@example.com")
	other := ts.register(t, "other@example.com")
	exp := ts.createExperience(t, owner.Token, "Gallery")

	resp := ts.do(t, http.MethodGet, "/api/experiences/public/"+exp.ID, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/experiences/"+exp.ID+"/publish", other.Token, fiber.Map{"isPublished": true}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/experiences/"+exp.ID+"/publish", owner.Token, fiber.Map{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var published experienceBody
	resp = ts.do(t, http.MethodPost, "/api/experiences/"+exp.ID+"/publish", owner.Token, fiber.Map{"isPublished": true}, &published)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, published.IsPublished)
	require.Len(t, ts.events.Published(), 1)
	assert.True(t, ts.events.Published()[0].Published)

	var view map[string]any
	resp = ts.do(t, http.MethodGet, "/api/experiences/public/"+exp.ID, "", nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, exp.ID, view["id"])
	assert.Equal(t, "Gallery", view["title"])
	assert.Contains(t, view, "config")
	assert.Contains(t, view, "createdAt")
	assert.NotContains(t, view, "userId")
	assert.NotContains(t, view, "description")

	resp = ts.do(t, http.MethodGet, "/api/experiences/public/bogus", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
