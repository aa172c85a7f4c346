package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	resp, created := doJSON(t, app, http.MethodPost, "/api/fragments", fiber.Map{
		"fragmentId": "Fragment-test/001",
		"author":     "tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, "OPEN_DOCUMENT", created["type"])
	assert.Nil(t, created["sealedAt"])
	id := created["id"].(float64)
	path := fmt.Sprintf("/api/fragments/%d", int(id))

	// First transition to sealed stamps sealedAt.
	resp, sealed := doJSON(t, app, http.MethodPatch, path, fiber.Map{"status": "sealed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	firstSeal, ok := sealed["sealedAt"].(string)
	require.True(t, ok)
	require.NotEmpty(t, firstSeal)

	// An unrelated update keeps the stamp.
	resp, updated := doJSON(t, app, http.MethodPatch, path, fiber.Map{"author": "tester-2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstSeal, updated["sealedAt"])

	// Re-open, then re-seal: the original stamp survives both.
	resp, reopened := doJSON(t, app, http.MethodPatch, path, fiber.Map{"status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstSeal, reopened["sealedAt"])

	resp, resealed := doJSON(t, app, http.MethodPatch, path, fiber.Map{"status": "sealed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstSeal, resealed["sealedAt"])

	// Delete succeeds, and deleting again is still a success.
	resp, _ = doJSON(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFragmentModuleDetachOverHTTP(t *testing.T) {
	app := newTestApp(t)

	// Seeded fragment 1 is attached to the first sample module.
	resp, fragment := doJSON(t, app, http.MethodGet, "/api/fragments/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, fragment["moduleId"])

	resp, detached := doJSON(t, app, http.MethodPatch, "/api/fragments/1", fiber.Map{"moduleId": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, detached["moduleId"])

	// An unrelated patch does not re-attach.
	resp, updated := doJSON(t, app, http.MethodPatch, "/api/fragments/1", fiber.Map{"author": "arc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, updated["moduleId"])
}

func TestCreateFragmentBornSealed(t *testing.T) {
	app := newTestApp(t)

	resp, created := doJSON(t, app, http.MethodPost, "/api/fragments", fiber.Map{
		"fragmentId": "Fragment-test/002",
		"status":     "sealed",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotNil(t, created["sealedAt"])
}

func TestCreateFragmentValidation(t *testing.T) {
	app := newTestApp(t)

	// fragmentId is required.
	resp, body := doJSON(t, app, http.MethodPost, "/api/fragments", fiber.Map{"author": "tester"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["error"])
}

func TestFragmentNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/fragments/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/fragments/999", fiber.Map{"author": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListFragmentsReturnsSeededData(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/fragments", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fragments []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fragments))
	require.Len(t, fragments, 2)
	assert.Equal(t, "Fragment-✞/001", fragments[0]["fragmentId"])
}
