package handler

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "reflect"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/jobhunter/internal/config"
    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    var req *http.Request
    if body == "" {
        req = httptest.NewRequest(method, target, nil)
    } else {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return out
}

func TestErrorHandlerStatuses(t *testing.T) {
    cases := []struct {
        err    error
        status int
        msg    string
    }{
        {repository.ErrJobNotFound, http.StatusNotFound, "job not found"},
        {repository.ErrEmailExists, http.StatusConflict, "email already exists"},
        {repository.NewError(repository.ErrForbidden, "not yours"), http.StatusForbidden, "not yours"},
        {repository.NewError(repository.ErrUnauthorized, "invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
        {repository.NewError(repository.ErrQuotaExceeded, "limit reached"), http.StatusTooManyRequests, "limit reached"},
        {fmt.Errorf("apply: %w", repository.ErrAlreadyApplied), http.StatusConflict, "apply: you have already applied for this job"},
        {badRequest("invalid id"), http.StatusBadRequest, "invalid id"},
        {echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
        {service.ErrAIUnavailable, http.StatusServiceUnavailable, service.ErrAIUnavailable.Error()},
        {errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
    }
    for _, tc := range cases {
        c, rec := newContext(http.MethodGet, "/", "")
        ErrorHandler(tc.err, c)
        assert.Equal(t, tc.status, rec.Code, tc.err.Error())
        body := decode(t, rec)
        assert.Equal(t, tc.msg, body["message"])
        assert.NotContains(t, body, "error")
    }
}

func TestErrorHandlerDetail(t *testing.T) {
    c, rec := newContext(http.MethodGet, "/admin/stats", "")
    ErrorHandler(&APIError{Status: http.StatusInternalServerError, Message: "Failed to fetch admin statistics", Err: errors.New("boom")}, c)

    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    body := decode(t, rec)
    assert.Equal(t, "Failed to fetch admin statistics", body["message"])
    assert.Equal(t, "boom", body["error"])
}

func TestErrorHandlerHead(t *testing.T) {
    c, rec := newContext(http.MethodHead, "/jobs", "")
    ErrorHandler(repository.ErrJobNotFound, c)
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Empty(t, rec.Body.String())
}

func TestRespondEnvelope(t *testing.T) {
    c, rec := newContext(http.MethodGet, "/", "")
    require.NoError(t, respond(c, http.StatusCreated, echo.Map{"id": 1}, "created"))

    body := decode(t, rec)
    assert.Equal(t, float64(http.StatusCreated), body["statusCode"])
    assert.Equal(t, "created", body["message"])
    assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
}

func TestBind(t *testing.T) {
    t.Run("unknown fields are named", func(t *testing.T) {
        c, _ := newContext(http.MethodPost, "/", `{"title":"Go dev","Salary":1,"bonus":2}`)
        var req postJobReq
        err := bind(c, &req)

        var ae *APIError
        require.ErrorAs(t, err, &ae)
        assert.Equal(t, http.StatusBadRequest, ae.Status)
        assert.Equal(t, "unknown fields: Salary, bonus", ae.Message)
    })

    t.Run("known fields match case-insensitively", func(t *testing.T) {
        c, _ := newContext(http.MethodPost, "/", `{"Title":"Go dev","salaryFrom":10}`)
        var req postJobReq
        require.NoError(t, bind(c, &req))
        assert.Equal(t, "Go dev", req.Title)
        assert.Equal(t, 10, req.SalaryFrom)
    })

    t.Run("empty body", func(t *testing.T) {
        c, _ := newContext(http.MethodPost, "/", "")
        var req applyReq
        require.NoError(t, bind(c, &req))
        assert.Empty(t, req.CoverLetter)
    })

    t.Run("not an object", func(t *testing.T) {
        c, _ := newContext(http.MethodPost, "/", `["a"]`)
        var req applyReq
        assert.EqualError(t, bind(c, &req), "request body must be a JSON object")
    })

    t.Run("wrong type", func(t *testing.T) {
        c, _ := newContext(http.MethodPost, "/", `{"experience":"three"}`)
        var req postJobReq
        assert.EqualError(t, bind(c, &req), "invalid value for experience")
    })
}

func TestJSONFieldsFollowsEmbedding(t *testing.T) {
    type base struct {
        Name string `json:"name"`
    }
    type wrapped struct {
        base
        Email  string `json:"email,omitempty"`
        Hidden string `json:"-"`
        Plain  string
    }
    assert.Equal(t, map[string]bool{"name": true, "email": true, "plain": true}, jsonFields(reflect.TypeOf(&wrapped{})))
}

func TestParamID(t *testing.T) {
    for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false, "": false} {
        c, _ := newContext(http.MethodGet, "/", "")
        c.SetParamNames("id")
        c.SetParamValues(raw)
        id, err := paramID(c, "id")
        if ok {
            require.NoError(t, err)
            assert.Equal(t, uint64(12), id)
        } else {
            assert.EqualError(t, err, "invalid id", raw)
        }
    }
}

func TestSearchQuery(t *testing.T) {
    c, _ := newContext(http.MethodGet, "/jobs?search=+go+&page=-2&limit=500&experience=x&salaryFrom=100&workMode=remote", "")
    q := searchQuery(c)

    assert.Equal(t, "go", q.Search)
    assert.Equal(t, 1, q.Page)
    assert.Equal(t, 100, q.PageSize)
    assert.Equal(t, 0, q.Experience)
    assert.Equal(t, 100, q.SalaryFrom)
    assert.Equal(t, "remote", q.WorkMode)

    c, _ = newContext(http.MethodGet, "/jobs", "")
    q = searchQuery(c)
    assert.Equal(t, 1, q.Page)
    assert.Equal(t, 10, q.PageSize)
}

func TestPageLinks(t *testing.T) {
    first := pageLinks(repository.JobSearchQuery{Page: 1, PageSize: 10}, 25)
    assert.Nil(t, first.Prev)
    assert.Equal(t, &pageRef{Page: 2, Limit: 10}, first.Next)

    last := pageLinks(repository.JobSearchQuery{Page: 3, PageSize: 10}, 25)
    assert.Nil(t, last.Next)
    assert.Equal(t, &pageRef{Page: 2, Limit: 10}, last.Prev)

    only := pageLinks(repository.JobSearchQuery{Page: 1, PageSize: 10}, 10)
    assert.Nil(t, only.Next)
    assert.Nil(t, only.Prev)
}

func TestSessionCookies(t *testing.T) {
    exp := time.Now().Add(time.Hour)

    dev := &AuthHandler{Cfg: config.Config{Env: "dev"}}
    ck := dev.cookie(RefreshCookie, "raw", exp)
    assert.True(t, ck.HttpOnly)
    assert.False(t, ck.Secure)
    assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
    assert.Equal(t, "/", ck.Path)

    prod := &AuthHandler{Cfg: config.Config{Env: "production", CookieDomain: "example.com"}}
    ck = prod.cookie(RefreshCookie, "raw", exp)
    assert.True(t, ck.Secure)
    assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
    assert.Equal(t, "example.com", ck.Domain)

    c, rec := newContext(http.MethodPost, "/users/logout", "")
    prod.clearSession(c)
    cookies := rec.Result().Cookies()
    require.Len(t, cookies, 2)
    for _, ck := range cookies {
        assert.Empty(t, ck.Value)
        assert.Equal(t, -1, ck.MaxAge)
    }
}

func TestPostJobValidation(t *testing.T) {
    h := &JobHandler{}
    cases := map[string]string{
        `{"description":"d"}`:                                         "Title input is required.",
        `{"title":"t"}`:                                               "Description input is required.",
        `{"title":"t","description":"d","experience":-1}`:             "experience and salary must not be negative",
        `{"title":"t","description":"d","salaryFrom":9,"salaryTo":5}`: "salaryFrom must not exceed salaryTo",
    }
    for body, msg := range cases {
        c, _ := newContext(http.MethodPost, "/post-new-job", body)
        assert.EqualError(t, h.PostJob(c), msg, body)
    }
}

func TestSaveAndUnsaveJob(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    h := NewProfileHandler(nil, repository.NewSavedJobRepo(db), nil)

    call := func(method string, fn echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
        c, rec := newContext(method, "/save/6", "")
        c.SetParamNames("id")
        c.SetParamValues("6")
        c.Set("user_id", uint64(1))
        c.Set("role", model.RoleJobSeeker)
        return rec, fn(c)
    }

    mock.ExpectQuery("SELECT 1 FROM jobs").WithArgs(uint64(6)).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
    mock.ExpectExec("INSERT INTO saved_jobs").WithArgs(uint64(1), uint64(6)).WillReturnResult(sqlmock.NewResult(1, 1))
    rec, err := call(http.MethodPost, h.SaveJob)
    require.NoError(t, err)
    assert.Equal(t, "Saved the job successfully", decode(t, rec)["message"])

    mock.ExpectQuery("SELECT 1 FROM jobs").WithArgs(uint64(6)).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
    mock.ExpectExec("INSERT INTO saved_jobs").WithArgs(uint64(1), uint64(6)).WillReturnError(&mysql.MySQLError{Number: 1062})
    _, err = call(http.MethodPost, h.SaveJob)
    assert.ErrorIs(t, err, repository.ErrAlreadySaved)

    mock.ExpectExec("DELETE FROM saved_jobs").WithArgs(uint64(1), uint64(6)).WillReturnResult(sqlmock.NewResult(0, 1))
    rec, err = call(http.MethodDelete, h.UnsaveJob)
    require.NoError(t, err)
    assert.Equal(t, "Successfully removed job from saved jobs list", decode(t, rec)["message"])

    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthAndPing(t *testing.T) {
    c, rec := newContext(http.MethodGet, "/healthz", "")
    require.NoError(t, Health(c))
    assert.Equal(t, "ok", rec.Body.String())

    c, rec = newContext(http.MethodGet, "/ping", "")
    require.NoError(t, Ping(c))
    assert.Equal(t, "pong", decode(t, rec)["message"])
}
