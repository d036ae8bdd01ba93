package handler // handler holds the echo handlers of the REST API

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "reflect"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/middleware"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

// requestTimeout bounds every database round trip of a request.
const requestTimeout = 5 * time.Second

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// APIError is an error with an explicit HTTP status.  Err, when set, is
// reported in the "error" field of the response.
type APIError struct {
    Status  int
    Message string
    Err     error
}

func (e *APIError) Error() string {
    if e.Err != nil {
        return e.Message + ": " + e.Err.Error()
    }
    return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func badRequest(msg string) error { return &APIError{Status: http.StatusBadRequest, Message: msg} }

// kindStatus maps the repository error kinds onto HTTP statuses.
var kindStatus = []struct {
    kind   error
    status int
}{
    {repository.ErrInvalid, http.StatusBadRequest},
    {repository.ErrUnauthorized, http.StatusUnauthorized},
    {repository.ErrForbidden, http.StatusForbidden},
    {repository.ErrNotFound, http.StatusNotFound},
    {repository.ErrConflict, http.StatusConflict},
    {repository.ErrQuotaExceeded, http.StatusTooManyRequests},
}

// translate returns the status, message and optional detail for err.
func translate(err error) (int, string, string) {
    var ae *APIError
    if errors.As(err, &ae) {
        detail := ""
        if ae.Err != nil {
            detail = ae.Err.Error()
        }
        return ae.Status, ae.Message, detail
    }
    var he *echo.HTTPError
    if errors.As(err, &he) {
        msg, ok := he.Message.(string)
        if !ok {
            msg = http.StatusText(he.Code)
        }
        return he.Code, msg, ""
    }
    if errors.Is(err, service.ErrAIUnavailable) {
        return http.StatusServiceUnavailable, err.Error(), ""
    }
    for _, ks := range kindStatus {
        if errors.Is(err, ks.kind) {
            return ks.status, err.Error(), ""
        }
    }
    if errors.Is(err, context.DeadlineExceeded) {
        return http.StatusGatewayTimeout, "request timed out", ""
    }
    return http.StatusInternalServerError, "Internal server error", ""
}

// ErrorHandler is the echo HTTPErrorHandler.  Every error becomes a
// {message, error?} body; 5xx errors are logged with their cause.
func ErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    status, msg, detail := translate(err)
    if status >= http.StatusInternalServerError {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
    }
    body := echo.Map{"message": msg}
    if detail != "" {
        body["error"] = detail
    }
    if c.Request().Method == http.MethodHead {
        err = c.NoContent(status)
    } else {
        err = c.JSON(status, body)
    }
    if err != nil {
        c.Logger().Error(err)
    }
}

// respond writes the success envelope.
func respond(c echo.Context, status int, data any, message string) error {
    return c.JSON(status, echo.Map{
        "statusCode": status,
        "data":       data,
        "message":    message,
    })
}

// reqCtx derives the context used for the database calls of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// paramID parses the named path parameter as an id.
func paramID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, badRequest("invalid " + name)
    }
    return id, nil
}

// caller returns the identity set by the auth middleware.
func caller(c echo.Context) service.Caller {
    id, _ := middleware.UserID(c)
    return service.Caller{ID: id, Role: middleware.Role(c)}
}

// bind decodes the JSON body into dst, a pointer to a struct.  Top level
// keys that dst has no field for are rejected with 400 naming them.  An
// empty body decodes to the zero value.
func bind(c echo.Context, dst any) error {
    raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
    if err != nil {
        return badRequest("could not read request body")
    }
    if len(strings.TrimSpace(string(raw))) == 0 {
        return nil
    }
    var keys map[string]json.RawMessage
    if err := json.Unmarshal(raw, &keys); err != nil {
        return badRequest("request body must be a JSON object")
    }
    known := jsonFields(reflect.TypeOf(dst))
    var unknown []string
    for k := range keys {
        if !known[strings.ToLower(k)] {
            unknown = append(unknown, k)
        }
    }
    if len(unknown) > 0 {
        sort.Strings(unknown)
        return badRequest("unknown fields: " + strings.Join(unknown, ", "))
    }
    if err := json.Unmarshal(raw, dst); err != nil {
        var te *json.UnmarshalTypeError
        if errors.As(err, &te) && te.Field != "" {
            return badRequest(fmt.Sprintf("invalid value for %s", te.Field))
        }
        return badRequest("invalid JSON body")
    }
    return nil
}

// jsonFields lists the lower-cased JSON names of a struct's fields,
// following embedded structs the way encoding/json does.
func jsonFields(t reflect.Type) map[string]bool {
    for t.Kind() == reflect.Pointer {
        t = t.Elem()
    }
    out := map[string]bool{}
    if t.Kind() != reflect.Struct {
        return out
    }
    for i := 0; i < t.NumField(); i++ {
        f := t.Field(i)
        tag := f.Tag.Get("json")
        name, _, _ := strings.Cut(tag, ",")
        if name == "-" {
            continue
        }
        if f.Anonymous && name == "" {
            for k := range jsonFields(f.Type) {
                out[k] = true
            }
            continue
        }
        if !f.IsExported() {
            continue
        }
        if name == "" {
            name = f.Name
        }
        out[strings.ToLower(name)] = true
    }
    return out
}
