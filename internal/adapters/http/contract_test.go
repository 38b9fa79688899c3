package httpadapter

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/hrdocs-compliance/internal/config"
)

func TestContractIsValid(t *testing.T) {
	if _, err := LoadContract(context.Background()); err != nil {
		t.Fatalf("LoadContract() error = %v", err)
	}
}

func TestContractMatchesRoutes(t *testing.T) {
	doc, err := LoadContract(context.Background())
	if err != nil {
		t.Fatalf("LoadContract() error = %v", err)
	}

	documented := map[string]bool{}
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			documented[method+" "+path] = true
		}
	}

	rt, _ := newTestRouter(config.Config{})
	mux, ok := rt.Handler().(chi.Routes)
	if !ok {
		t.Fatalf("router handler is not a chi.Routes")
	}
	routed := map[string]bool{}
	err = chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if strings.HasPrefix(route, "/v1/") {
			routed[method+" "+route] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}

	if missing := difference(routed, documented); len(missing) > 0 {
		t.Fatalf("routes missing from openapi.yaml: %v", missing)
	}
	if stale := difference(documented, routed); len(stale) > 0 {
		t.Fatalf("openapi.yaml documents unrouted operations: %v", stale)
	}
}

func TestOpenAPIDocumentIsServed(t *testing.T) {
	rt, _ := newTestRouter(config.Config{APIKey: "secret"})
	res := serve(t, rt.Handler(), http.MethodGet, "/openapi.yaml", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", res.Code)
	}
	if !strings.HasPrefix(res.Body.String(), "openapi: 3.0.3") {
		t.Fatalf("unexpected body prefix: %.40s", res.Body.String())
	}
}

func difference(a, b map[string]bool) []string {
	var out []string
	for key := range a {
		if !b[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
