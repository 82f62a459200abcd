package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/export"
	apperrors "github.com/pscheid92/sentiscope/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func multipartUpload(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// --- Analyze ---

func TestHandleAnalyze_JSON(t *testing.T) {
	app := &mockAppService{}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(jsonRequest(http.MethodPost, "/api/analyze", `{"text":"This is amazing!"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "This is amazing!", result.Text)
	assert.Equal(t, domain.LabelPositive, result.Sentiment[0].Label)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
}

func TestHandleAnalyze_Form(t *testing.T) {
	var got string
	app := &mockAppService{
		analyzeFn: func(_ context.Context, _ uuid.UUID, text string) (domain.AnalysisResult, error) {
			got = text
			return testResult(text), nil
		},
	}
	client := newTestClient(newTestServer(t, app))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(url.Values{"text": {"form text"}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := client.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "form text", got)
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType apperrors.ErrorType
	}{
		{"empty text", domain.ErrEmptyText, http.StatusBadRequest, apperrors.TypeValidation},
		{"in progress", domain.ErrAnalysisInProgress, http.StatusConflict, apperrors.TypeConflict},
		{"store down", fmt.Errorf("update: %w", domain.ErrStoreUnavailable), http.StatusBadGateway, apperrors.TypeExternal},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, apperrors.TypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &mockAppService{
				analyzeFn: func(context.Context, uuid.UUID, string) (domain.AnalysisResult, error) {
					return domain.AnalysisResult{}, tt.err
				},
			}
			client := newTestClient(newTestServer(t, app))

			rec := client.do(jsonRequest(http.MethodPost, "/api/analyze", `{"text":"x"}`))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errType, decodeError(t, rec).Type)
		})
	}
}

func TestHandleAnalyze_MalformedBody(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}))

	rec := client.do(jsonRequest(http.MethodPost, "/api/analyze", `{"text":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec).Error)
}

func TestHandleAnalyze_OversizedBody(t *testing.T) {
	tests := []struct {
		name    string
		request func() *http.Request
	}{
		{
			name: "declared length",
			request: func() *http.Request {
				return jsonRequest(http.MethodPost, "/api/analyze", `{"text":"`+strings.Repeat("a", 64<<10)+`"}`)
			},
		},
		{
			name: "chunked body",
			request: func() *http.Request {
				req := jsonRequest(http.MethodPost, "/api/analyze", `{"text":"`+strings.Repeat("a", 64<<10)+`"}`)
				req.ContentLength = -1
				return req
			},
		},
		{
			name: "form body",
			request: func() *http.Request {
				form := url.Values{"text": {strings.Repeat("a", 64<<10)}}
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(form.Encode()))
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			app := &mockAppService{
				analyzeFn: func(_ context.Context, _ uuid.UUID, text string) (domain.AnalysisResult, error) {
					called = true
					return testResult(text), nil
				},
			}
			client := newTestClient(newTestServer(t, app, withBodyLimits(1<<10, 1<<20)))

			rec := client.do(tt.request())

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, apperrors.TypeTooLarge, decodeError(t, rec).Type)
			assert.False(t, called)
		})
	}
}

func TestHandleAnalyze_TextTooLargeFromService(t *testing.T) {
	app := &mockAppService{
		analyzeFn: func(context.Context, uuid.UUID, string) (domain.AnalysisResult, error) {
			return domain.AnalysisResult{}, fmt.Errorf("%w: 2048 bytes exceeds 1024", domain.ErrTextTooLarge)
		},
	}
	client := newTestClient(newTestServer(t, app, withBodyLimits(1<<10, 1<<20)))

	rec := client.do(jsonRequest(http.MethodPost, "/api/analyze", `{"text":"`+strings.Repeat("a", 2<<10)+`"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.TypeTooLarge, decodeError(t, rec).Type)
}

func TestSessionCookie_IsStableAcrossRequests(t *testing.T) {
	app := &mockAppService{}
	client := newTestClient(newTestServer(t, app))

	first := client.do(jsonRequest(http.MethodPost, "/api/analyze", `{"text":"one"}`))
	require.Equal(t, http.StatusOK, first.Code)
	require.NotEmpty(t, first.Result().Cookies(), "first request should issue a session cookie")

	second := client.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Result().Cookies(), "existing session should not be reissued")

	ids := app.seenIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
	assert.NotEqual(t, uuid.Nil, ids[0])
}

func TestSessionCookie_SeparateClientsGetSeparateSessions(t *testing.T) {
	app := &mockAppService{}
	srv := newTestServer(t, app)

	newTestClient(srv).do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	newTestClient(srv).do(httptest.NewRequest(http.MethodGet, "/api/session", nil))

	ids := app.seenIDs()
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestSessionCookie_TamperedCookieStartsFresh(t *testing.T) {
	app := &mockAppService{}
	client := newTestClient(newTestServer(t, app))
	client.cookies = []*http.Cookie{{Name: sessionName, Value: "forged"}}

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
	require.Len(t, app.seenIDs(), 1)
}

// --- Upload ---

func TestHandleUpload_Success(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}))

	rec := client.do(multipartUpload(t, "review.txt", "text/plain", "Great product"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename":"review.txt","text":"Great product"}`, rec.Body.String())
}

func TestHandleUpload_PassesFileMetadata(t *testing.T) {
	var gotName, gotType string
	app := &mockAppService{
		uploadFn: func(_ context.Context, filename, contentType string, _ io.Reader) (string, error) {
			gotName, gotType = filename, contentType
			return "", domain.ErrInvalidFileType
		},
	}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(multipartUpload(t, "photo.png", "image/png", "\x89PNG"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, apperrors.TypeUnsupportedMedia, decodeError(t, rec).Type)
	assert.Equal(t, "photo.png", gotName)
	assert.Equal(t, "image/png", gotType)
}

func TestHandleUpload_TooLarge(t *testing.T) {
	app := &mockAppService{
		uploadFn: func(context.Context, string, string, io.Reader) (string, error) {
			return "", fmt.Errorf("%w: limit is 16 bytes", domain.ErrFileTooLarge)
		},
	}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(multipartUpload(t, "big.txt", "text/plain", strings.Repeat("a", 64)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.TypeTooLarge, decodeError(t, rec).Type)
}

func TestHandleUpload_OversizedBodyNeverReachesService(t *testing.T) {
	called := false
	app := &mockAppService{
		uploadFn: func(context.Context, string, string, io.Reader) (string, error) {
			called = true
			return "", nil
		},
	}
	client := newTestClient(newTestServer(t, app, withBodyLimits(1<<10, 1<<10)))

	rec := client.do(multipartUpload(t, "big.txt", "text/plain", strings.Repeat("a", 256<<10)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.TypeTooLarge, decodeError(t, rec).Type)
	assert.False(t, called)
}

func TestHandleUpload_WithinLimitIsAccepted(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}, withBodyLimits(1<<10, 1<<10)))

	rec := client.do(multipartUpload(t, "notes.txt", "text/plain", strings.Repeat("a", 1<<10)))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}))

	rec := client.do(jsonRequest(http.MethodPost, "/api/upload", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Session & reset ---

func TestHandleSession_EmptyState(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}))

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"current":null,"recent":[],"pending":false}`, rec.Body.String())
}

func TestHandleSession_WithResults(t *testing.T) {
	result := testResult("newest")
	app := &mockAppService{
		sessionFn: func(context.Context, uuid.UUID) (domain.SessionState, error) {
			return domain.SessionState{Current: &result, Recent: []domain.AnalysisResult{result, testResult("older")}, Pending: true}, nil
		},
	}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Pending)
	require.Len(t, resp.Recent, 2)
	assert.Equal(t, "newest", resp.Recent[0].Text)
	assert.Equal(t, "newest", resp.Current.Text)
}

func TestHandleReset(t *testing.T) {
	var resetID uuid.UUID
	app := &mockAppService{
		resetFn: func(_ context.Context, id uuid.UUID) error {
			resetID = id
			return nil
		},
	}
	client := newTestClient(newTestServer(t, app))

	client.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	rec := client.do(httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, app.seenIDs()[0], resetID)
}

// --- Export ---

func TestHandleExport_ServesAttachment(t *testing.T) {
	var gotFormat string
	app := &mockAppService{
		exportFn: func(_ context.Context, _ uuid.UUID, format string) (*export.Artifact, error) {
			gotFormat = format
			return &export.Artifact{
				Filename:    "sentiment-analysis-2026-05-04.csv",
				ContentType: "text/csv; charset=utf-8",
				Data:        []byte("Timestamp,Text\n"),
			}, nil
		},
	}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", gotFormat)
	assert.Equal(t, `attachment; filename="sentiment-analysis-2026-05-04.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "Timestamp,Text\n", rec.Body.String())
}

func TestHandleExport_NoResults(t *testing.T) {
	client := newTestClient(newTestServer(t, &mockAppService{}))

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/export/pdf", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.TypeNotFound, decodeError(t, rec).Type)
}

func TestHandleExport_UnknownFormat(t *testing.T) {
	app := &mockAppService{
		exportFn: func(_ context.Context, _ uuid.UUID, format string) (*export.Artifact, error) {
			_, err := domain.ParseExportFormat(format)
			return nil, err
		},
	}
	client := newTestClient(newTestServer(t, app))

	rec := client.do(httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
	assert.Equal(t, "unsupported export format", resp.Error)
}
