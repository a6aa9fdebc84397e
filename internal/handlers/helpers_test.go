package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/middleware"
	"github.com/dimitrije/internal-ops/internal/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

var testLogger = zap.NewNop()

// testUser is an authenticated caller with a ready bearer header.
type testUser struct {
	actor   access.Actor
	headers map[string]string
}

func newTestUser(t *testing.T, role access.Role) testUser {
	t.Helper()
	id := uuid.New()
	token := testutil.GenerateTestToken(t, testutil.TestJWTService(), id, role.String()+"@example.com", role.String())
	return testUser{
		actor:   access.NewActor(id, role),
		headers: testutil.AuthHeader(token),
	}
}

type route struct {
	method  string
	path    string
	handler drift.HandlerFunc
}

// newTestClient serves routes behind the body parser and bearer auth.
func newTestClient(t *testing.T, routes ...route) *testutil.HTTPTestClient {
	t.Helper()
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	for _, r := range routes {
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler)
		case http.MethodPost:
			app.Post(r.path, r.handler)
		case http.MethodPatch:
			app.Patch(r.path, r.handler)
		case http.MethodDelete:
			app.Delete(r.path, r.handler)
		default:
			t.Fatalf("unsupported method %s", r.method)
		}
	}
	return testutil.NewHTTPTestClient(t, app)
}
