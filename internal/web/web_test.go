package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tip-calculator/internal/testutil"
)

func TestHandlerServesIndex(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := testutil.ExecuteRequest(r, Handler())

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), `id="bill-input"`) {
		t.Fatal("expected index page with bill input")
	}
}

func TestHandlerServesScript(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	w := testutil.ExecuteRequest(r, Handler())

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), "/calculator/sessions") {
		t.Fatal("expected script to talk to the session API")
	}
}

func TestScriptBatchesPendingEdits(t *testing.T) {
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/app.js", nil), Handler())
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	script := w.Body.String()

	// Field edits share one flush to the batch endpoint.
	for _, want := range []string{"/inputs", "markDirty('bill'", "markDirty('custom_tip'", "markDirty('people'"} {
		if !strings.Contains(script, want) {
			t.Errorf("expected script to contain %q", want)
		}
	}
	for _, stale := range []string{"/bill`", "/custom-tip`", "/people`"} {
		if strings.Contains(script, stale) {
			t.Errorf("expected script not to post single fields via %q", stale)
		}
	}

	// A preset click discards a pending custom tip before selecting.
	if !strings.Contains(script, "dirty.delete('custom_tip')") {
		t.Error("expected preset click to drop the pending custom tip")
	}
}
