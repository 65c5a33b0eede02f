package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/gin"
	"github.com/bobinette/archivist/jwt"
	"github.com/bobinette/archivist/log"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/bleve"
	"github.com/bobinette/archivist/archivist/endpoints"
	"github.com/bobinette/archivist/archivist/inmem"
	"github.com/bobinette/archivist/archivist/services"
)

var key = []byte("test-key")

type client struct {
	t      *testing.T
	srv    http.Handler
	tokens map[string]string
}

func createServer(t *testing.T) *client {
	principals := inmem.NewPrincipalRepository(
		archivist.Principal{ID: "alice", Name: "Alice", Role: archivist.RoleUser},
		archivist.Principal{ID: "bob", Name: "Bob", Role: archivist.RoleUser},
		archivist.Principal{ID: "dana", Name: "Dana", Role: archivist.RoleUser, IsDepartmentManager: true},
		archivist.Principal{ID: "root", Name: "Root", Role: archivist.RoleAdmin},
	)
	store := inmem.NewDocumentStore()
	audit := inmem.NewAuditLog()
	logger := log.Discard()

	index := &bleve.DocumentIndex{}
	require.NoError(t, index.OpenMem())
	t.Cleanup(func() { index.Close() })

	documentService := services.NewDocumentService(store, index, audit, logger)
	lifecycleService := services.NewLifecycleService(store, principals, index, audit, logger)
	taskService := services.NewTaskService(inmem.NewTaskRepository())

	srv := gin.New("test", logger)
	RegisterDocumentEndpoints(srv, documentService, key, principals)
	RegisterLifecycleEndpoints(srv, lifecycleService, documentService, key, principals)
	RegisterTaskEndpoints(srv, taskService, key, principals)
	RegisterFeatureEndpoints(srv, endpoints.Features{DocumentPermissionsScreen: true}, key)

	tokens := make(map[string]string)
	encoder := jwt.NewEncodeDecoder(key)
	for _, id := range []string{"alice", "bob", "dana", "root", "ghost"} {
		token, err := encoder.Encode(id)
		require.NoError(t, err)
		tokens[id] = token
	}

	return &client{t: t, srv: srv, tokens: tokens}
}

func (c *client) do(user, method, path string, body interface{}) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.tokens[user]))
	}
	resp := httptest.NewRecorder()
	c.srv.ServeHTTP(resp, req)

	var res map[string]interface{}
	require.NoError(c.t, json.Unmarshal(resp.Body.Bytes(), &res), resp.Body.String())
	return resp.Code, res
}

func data(res map[string]interface{}) map[string]interface{} {
	d, _ := res["data"].(map[string]interface{})
	return d
}

func TestCheckoutFlow(t *testing.T) {
	c := createServer(t)

	code, res := c.do("alice", "POST", "/archivist/documents", map[string]interface{}{
		"name":            "plan.pdf",
		"fileUrl":         "https://files/plan.pdf",
		"confidentiality": "public",
	})
	require.Equal(t, http.StatusOK, code, res)
	id := data(res)["id"].(string)
	assert.Equal(t, 1.0, data(res)["version"])

	code, res = c.do("alice", "POST", "/archivist/documents/"+id+"/checkout", map[string]string{"notes": "typos"})
	require.Equal(t, http.StatusOK, code, res)

	code, res = c.do("bob", "POST", "/archivist/documents/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_locked_by_other", res["reason"])

	code, res = c.do("bob", "GET", "/archivist/documents/"+id+"/versions/permission", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(res)["canUpload"])

	code, res = c.do("alice", "GET", "/archivist/documents/"+id+"/checkout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(res)["checkedOut"])
	assert.Equal(t, "Alice", data(res)["holderName"])

	code, res = c.do("alice", "GET", "/archivist/checkouts", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 1)

	code, res = c.do("alice", "POST", "/archivist/documents/"+id+"/checkin", nil)
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, 2.0, data(res)["version"])
	assert.Nil(t, data(res)["lock"])

	code, res = c.do("bob", "POST", "/archivist/documents/"+id+"/checkout", nil)
	require.Equal(t, http.StatusOK, code, res)

	code, res = c.do("alice", "DELETE", "/archivist/documents/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, res = c.do("dana", "DELETE", "/archivist/documents/"+id+"/checkout", nil)
	require.Equal(t, http.StatusOK, code, res)

	code, res = c.do("alice", "GET", "/archivist/documents/"+id+"/versions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 1)
	assert.Equal(t, 2.0, res["current"])

	code, res = c.do("alice", "GET", "/archivist/documents/"+id+"/audit", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 5)
}

func TestUploadVersion(t *testing.T) {
	c := createServer(t)

	_, res := c.do("alice", "POST", "/archivist/documents", map[string]interface{}{
		"name":            "budget.xlsx",
		"fileUrl":         "https://files/budget-1.xlsx",
		"confidentiality": "confidential",
		"assignees":       []string{"bob"},
	})
	id := data(res)["id"].(string)

	code, res := c.do("alice", "POST", "/archivist/documents/"+id+"/versions", map[string]interface{}{
		"fileUrl":     "https://files/budget-2.xlsx",
		"versionType": "minor",
	})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, 1.1, data(res)["newVersion"])

	// Bob is assigned, he can read but not upload
	code, res = c.do("bob", "POST", "/archivist/documents/"+id+"/versions", map[string]interface{}{
		"fileUrl":     "https://files/budget-3.xlsx",
		"versionType": "major",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", res["reason"])

	code, res = c.do("alice", "POST", "/archivist/documents/"+id+"/versions", map[string]interface{}{
		"fileUrl":     "https://files/budget-3.xlsx",
		"versionType": "patch",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", res["reason"])
}

func TestConfidentiality(t *testing.T) {
	c := createServer(t)

	_, res := c.do("alice", "POST", "/archivist/documents", map[string]interface{}{
		"name":            "memo",
		"fileUrl":         "u",
		"confidentiality": "internal",
		"assignees":       []string{"dana"},
	})
	id := data(res)["id"].(string)

	code, _ := c.do("bob", "GET", "/archivist/documents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, res = c.do("bob", "GET", "/archivist/documents", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 0)

	code, res = c.do("alice", "PUT", "/archivist/documents/"+id+"/confidentiality", map[string]interface{}{
		"confidentiality": "public",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_level", res["reason"])

	code, res = c.do("alice", "PUT", "/archivist/documents/"+id+"/confidentiality", map[string]interface{}{
		"confidentiality": "secret",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "missing_assignees", res["reason"])

	code, res = c.do("alice", "PUT", "/archivist/documents/"+id+"/confidentiality", map[string]interface{}{
		"confidentiality": "secret",
		"assignees":       []string{"bob"},
	})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "secret", data(res)["confidentiality"])

	code, _ = c.do("bob", "GET", "/archivist/documents/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthentication(t *testing.T) {
	c := createServer(t)

	code, res := c.do("", "GET", "/archivist/documents", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", res["reason"])

	code, _ = c.do("ghost", "GET", "/archivist/documents", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = c.do("bob", "GET", "/archivist/features", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(res)["documentPermissionsScreen"])
}

func TestTasks(t *testing.T) {
	c := createServer(t)

	code, res := c.do("bob", "POST", "/archivist/tasks", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusForbidden, code, res)

	code, res = c.do("bob", "GET", "/archivist/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 0)
}

func TestCheckout_emptyChunkedBody(t *testing.T) {
	c := createServer(t)

	_, res := c.do("alice", "POST", "/archivist/documents", map[string]interface{}{
		"name":            "plan.pdf",
		"fileUrl":         "u",
		"confidentiality": "public",
	})
	id := data(res)["id"].(string)

	// No length known up front, as with a chunked transfer
	req := httptest.NewRequest("POST", "/archivist/documents/"+id+"/checkout", io.NopCloser(strings.NewReader("")))
	require.Equal(t, int64(-1), req.ContentLength)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.tokens["alice"]))
	resp := httptest.NewRecorder()
	c.srv.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	code, res := c.do("alice", "GET", "/archivist/documents/"+id+"/checkout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(res)["checkedOut"])

	code, res = c.do("bob", "POST", "/archivist/documents/"+id+"/checkout", "{")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", res["reason"])
}

func TestReindex(t *testing.T) {
	c := createServer(t)

	for _, name := range []string{"travel plan", "annual budget"} {
		code, res := c.do("alice", "POST", "/archivist/documents", map[string]interface{}{
			"name":            name,
			"fileUrl":         "u",
			"confidentiality": "public",
		})
		require.Equal(t, http.StatusOK, code, res)
	}

	code, res := c.do("dana", "POST", "/archivist/index", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", res["reason"])

	code, _ = c.do("ghost", "POST", "/archivist/index", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = c.do("root", "POST", "/archivist/index", nil)
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, 2.0, data(res)["indexed"])

	code, res = c.do("bob", "GET", "/archivist/documents?q=budget", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 1)
}
