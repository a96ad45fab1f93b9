package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/netx"
)

const (
	DefaultLimit  = 10
	DefaultSortBy = "upload_timestamp"
	DefaultOrder  = "desc"

	uploadField = "file"
)

var ErrInvalidListParams = errors.New("invalid list parameters")

var (
	validSortBy = map[string]bool{"upload_timestamp": true, "filename": true, "size": true}
	validOrder  = map[string]bool{"asc": true, "desc": true}

	dispositionFilename = regexp.MustCompile(`filename="([^"]+)"`)
)

// ListParams selects a page of the listing. Zero values take the defaults.
type ListParams struct {
	Limit  int
	Offset int
	SortBy string
	Order  string
}

func (p ListParams) withDefaults() ListParams {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	return p
}

func (p ListParams) validate() error {
	switch {
	case p.Limit < 0:
		return fmt.Errorf("%w: limit %d", ErrInvalidListParams, p.Limit)
	case p.Offset < 0:
		return fmt.Errorf("%w: offset %d", ErrInvalidListParams, p.Offset)
	case !validSortBy[p.SortBy]:
		return fmt.Errorf("%w: sort_by %q", ErrInvalidListParams, p.SortBy)
	case !validOrder[p.Order]:
		return fmt.Errorf("%w: order %q", ErrInvalidListParams, p.Order)
	}
	return nil
}

func (p ListParams) query() url.Values {
	return url.Values{
		"limit":   {strconv.Itoa(p.Limit)},
		"offset":  {strconv.Itoa(p.Offset)},
		"sort_by": {p.SortBy},
		"order":   {p.Order},
	}
}

// Download is an open file body. The caller must close Content.
type Download struct {
	Content io.ReadCloser
	// Filename is the name suggested by the server, or "" if it gave none.
	Filename    string
	ContentType string
	// Size is -1 when unknown.
	Size int64
}

type FileService interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, onProgress func(percent int)) (*models.File, error)
	UploadPath(ctx context.Context, path string, onProgress func(percent int)) (*models.File, error)
	List(ctx context.Context, params ListParams) (*models.FilePage, error)
	Download(ctx context.Context, id int64) (*Download, error)
	Rename(ctx context.Context, id int64, filename string) (*models.File, error)
	Delete(ctx context.Context, id int64) error
}

type fileService struct {
	api API
}

func NewFileService(api API) FileService {
	return &fileService{api: api}
}

// Upload streams r as the multipart field "file". With a known size the
// exact body length is sent and onProgress receives the rounded share of
// the body written so far; with size < 0 the body is chunked and no
// progress is reported.
func (s *fileService) Upload(ctx context.Context, name string, r io.Reader, size int64, onProgress func(percent int)) (*models.File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if _, err := mw.CreateFormFile(uploadField, name); err != nil {
		return nil, fmt.Errorf("build multipart header: %w", err)
	}
	head := bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart trailer: %w", err)
	}
	tail := bytes.Clone(buf.Bytes())

	var (
		body   io.Reader = io.MultiReader(bytes.NewReader(head), r, bytes.NewReader(tail))
		length int64     = -1
	)
	if size >= 0 {
		length = int64(len(head)) + size + int64(len(tail))
		body = netx.NewProgressReader(body, length, onProgress)
	}

	var file models.File
	err := s.api.DoJSON(ctx, http.MethodPost, "/files/upload", &file,
		client.WithBody(body, mw.FormDataContentType(), length))
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *fileService) UploadPath(ctx context.Context, path string, onProgress func(percent int)) (*models.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return s.Upload(ctx, filepath.Base(path), f, fi.Size(), onProgress)
}

func (s *fileService) List(ctx context.Context, params ListParams) (*models.FilePage, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	var page models.FilePage
	if err := s.api.DoJSON(ctx, http.MethodGet, "/files", &page, client.WithQuery(params.query())); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *fileService) Download(ctx context.Context, id int64) (*Download, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/files/%d/download", id))
	if err != nil {
		return nil, err
	}

	return &Download{
		Content:     resp.Body,
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (s *fileService) Rename(ctx context.Context, id int64, filename string) (*models.File, error) {
	var file models.File
	err := s.api.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/files/%d", id), &file,
		client.WithJSON(models.RenameRequest{Filename: filename}))
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *fileService) Delete(ctx context.Context, id int64) error {
	return s.api.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/files/%d", id), nil)
}

// FilenameFromDisposition returns the first quoted filename="..." value of
// a Content-Disposition header, or "" when there is none.
func FilenameFromDisposition(header string) string {
	m := dispositionFilename.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return m[1]
}
