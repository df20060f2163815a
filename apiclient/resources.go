package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Resource is a REST collection served at path
type Resource[T any] struct {
	client *Client
	path   string
}

// List returns every item of the collection
func (r Resource[T]) List(ctx context.Context) ([]T, error) {
	items, err := getData[[]T](ctx, r.client, http.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return *items, nil
}

// Get returns one item
func (r Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	item, err := getData[T](ctx, r.client, http.MethodGet, r.path+"/"+escape(id), nil)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("[apiclient Get] %s/%s: empty response", r.path, id)
	}
	return item, nil
}

// Create posts a new item and returns the stored version
func (r Resource[T]) Create(ctx context.Context, item T) (*T, error) {
	return getData[T](ctx, r.client, http.MethodPost, r.path, item)
}

// Update replaces an item and returns the stored version
func (r Resource[T]) Update(ctx context.Context, id string, item T) (*T, error) {
	return getData[T](ctx, r.client, http.MethodPut, r.path+"/"+escape(id), item)
}

// Delete removes an item
func (r Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.doJSON(ctx, http.MethodDelete, r.path+"/"+escape(id), nil, nil)
}

// MyEnrollments lists the applications of the logged-in account
func (c *Client) MyEnrollments(ctx context.Context) ([]Enrollment, error) {
	items, err := getData[[]Enrollment](ctx, c, http.MethodGet, "/enrollments/me", nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Enrollment{}, nil
	}
	return *items, nil
}

// UpdateEnrollmentStatus approves or rejects an application
func (c *Client) UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus) (*Enrollment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("[apiclient UpdateEnrollmentStatus] unknown status %q", status)
	}
	body := map[string]EnrollmentStatus{"status": status}
	return getData[Enrollment](ctx, c, http.MethodPatch, "/enrollments/"+escape(id)+"/status", body)
}

// AdminStats returns the back-office counters
func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	stats, err := getData[Stats](ctx, c, http.MethodGet, "/admin/stats", nil)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &Stats{}, nil
	}
	return stats, nil
}

// UploadProductImage sends an image as multipart/form-data under the upload timeout
func (c *Client) UploadProductImage(ctx context.Context, productID, filename string, image io.Reader) (*Product, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("[apiclient UploadProductImage] form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("[apiclient UploadProductImage] copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("[apiclient UploadProductImage] close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/products/"+escape(productID)+"/image", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var env envelope[Product]
	if err := c.send(c.upload, req, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
