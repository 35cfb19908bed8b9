package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lanarena/services"

	"github.com/gofiber/fiber/v2"
)

func TestFailMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", services.ErrRegistrationNotFound, http.StatusNotFound, "registration not found"},
		{"wrapped transition", fmt.Errorf("%w: verified -> rejected", services.ErrInvalidTransition), http.StatusConflict, "status change not allowed"},
		{"too large", fmt.Errorf("submit: %w", &services.UploadTooLargeError{MaxBytes: 5 << 20}), http.StatusRequestEntityTooLarge, "College ID must be 5MB or smaller"},
		{"fields", services.FieldErrors{"title": "Title is required"}, http.StatusBadRequest, "Please fix the errors"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Failed to load things"},
	}

	for _, tt := range tests {
		app := fiber.New()
		err := tt.err
		app.Get("/", func(c *fiber.Ctx) error { return Fail(c, "load things", err) })

		resp, e := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if e != nil {
			t.Fatalf("%s: %v", tt.name, e)
		}
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, resp.StatusCode, tt.status)
		}
		if !strings.Contains(string(body), tt.body) {
			t.Errorf("%s: body %q lacks %q", tt.name, body, tt.body)
		}
	}
}

func TestJSONSuccessMergesFields(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return JSONSuccess(c, http.StatusCreated, fiber.Map{"message": "ok"})
	})
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusCreated || body["success"] != true || body["message"] != "ok" {
		t.Fatalf("status %d body %v", resp.StatusCode, body)
	}
}

func TestWriteCSVQuotes(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{{"Team Name", "College"}, {"Smith, Jones", `The "Best" College`}}
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Team Name,College\n\"Smith, Jones\",\"The \"\"Best\"\" College\"\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
