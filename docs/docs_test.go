package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "Crypto Volume Analysis Toolkit API" {
		t.Fatalf("unexpected title %q", SwaggerInfo.Title)
	}
}

func TestSwaggerDocListsDashboardRoutes(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()
	for _, path := range []string{"/run-spot", "/run-advanced", "/upload-futures", "/logs-chunk", "/api/reports"} {
		if !strings.Contains(doc, `"`+path+`"`) {
			t.Fatalf("expected %s in swagger doc", path)
		}
	}
	if !strings.Contains(doc, `"APIKey"`) {
		t.Fatal("expected APIKey security definition")
	}
}
