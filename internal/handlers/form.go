package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/models"
)

var errBodyTooLarge = errors.New("request body too large")

// readForm streams the multipart body into a Form, keeping the order in
// which parts were submitted.
func readForm(c *gin.Context, maxBytes int64) (*models.Form, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("expected multipart/form-data: %w", err)
	}

	form := &models.Form{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			return nil, classifyReadError(err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		var buf bytes.Buffer
		_, err = io.Copy(&buf, part)
		part.Close()
		if err != nil {
			return nil, classifyReadError(err)
		}

		if filename := part.FileName(); filename != "" {
			form.AddFile(name, &models.FilePart{
				Filename:    filename,
				ContentType: part.Header.Get("Content-Type"),
				Data:        buf.Bytes(),
			})
			continue
		}
		form.AddText(name, buf.String())
	}
}

func classifyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w (limit %d bytes)", errBodyTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("malformed multipart body: %w", err)
}
