// Package models defines the payloads exchanged with the FileKeeper API.
package models

import "github.com/dmitrijs2005/filekeeper/internal/timex"

// File is a stored file as described by the server.
type File struct {
	ID              int64           `json:"id"`
	Filename        string          `json:"filename"`
	URL             string          `json:"url,omitempty"`
	Size            int64           `json:"size"`
	UploadTimestamp timex.Timestamp `json:"upload_timestamp"`
}

// FilePage is one page of the file listing.
type FilePage struct {
	Files  []File `json:"file_list"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// HasNext reports whether files remain past this page.
func (p *FilePage) HasNext() bool {
	return int64(p.Offset+len(p.Files)) < p.Total
}

// HasPrev reports whether this page starts past the first file.
func (p *FilePage) HasPrev() bool {
	return p.Offset > 0
}

type RenameRequest struct {
	Filename string `json:"filename"`
}
