package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/receipt"
)

const paymentID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type stubService struct {
	gotRef   string
	gotInput receipt.UploadInput
	data     []byte
	err      error
}

func (s *stubService) Upload(_ context.Context, ref string, in receipt.UploadInput) (*receipt.Receipt, error) {
	s.gotRef, s.gotInput = ref, in
	if s.err != nil {
		return nil, s.err
	}
	data, _ := io.ReadAll(in.Content)
	s.data = data
	return &receipt.Receipt{ID: "r-1", PaymentID: paymentID, Filename: in.Filename, ContentType: "image/png", Size: int64(len(data))}, nil
}

func (s *stubService) Download(_ context.Context, id string) (io.ReadCloser, *receipt.Receipt, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return io.NopCloser(strings.NewReader("png-bytes")), &receipt.Receipt{ID: "r-1", PaymentID: id, Filename: "pay.png", ContentType: "image/png"}, nil
}

func (s *stubService) DownloadThumbnail(_ context.Context, id string) (io.ReadCloser, *receipt.Receipt, error) {
	return nil, nil, receipt.ErrNoThumbnail
}

func newRouter(svc receipt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	RegisterRoutes(r.Group("/v1"), h)
	RegisterAdminRoutes(r.Group("/v1/admin"), h)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	body, ct := multipartBody(t, "file", "gcash.png", []byte("\x89PNG fake"))
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/ref/receipt?ref=abc", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "abc", svc.gotRef)
	assert.Equal(t, "gcash.png", svc.gotInput.Filename)
	assert.Equal(t, []byte("\x89PNG fake"), svc.data)
	assert.JSONEq(t, `{"id":"r-1","payment_id":"`+paymentID+`","filename":"gcash.png","content_type":"image/png","size":9,"has_thumbnail":false,"created_at":"0001-01-01T00:00:00Z"}`, w.Body.String())
}

func TestUploadWithoutFile(t *testing.T) {
	r := newRouter(&stubService{})

	body, ct := multipartBody(t, "other", "x.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/ref/receipt?ref=abc", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Receipt image is required","field":"file"}`, w.Body.String())
}

func TestUploadServiceError(t *testing.T) {
	r := newRouter(&stubService{err: receipt.ErrPaymentReviewed})

	body, ct := multipartBody(t, "file", "x.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/ref/receipt?ref=abc", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServeReceipt(t *testing.T) {
	r := newRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/admin/payments/"+paymentID+"/receipt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, `inline; filename="pay.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/admin/payments/not-a-uuid/receipt", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/admin/payments/"+paymentID+"/receipt/thumbnail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
