// internal/forms/addlocation.go

package forms

import (
	"context"
	"strings"
	"sync"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/locations"
	"github.com/sacavia/sacavia-go/internal/media"
	"github.com/sacavia/sacavia-go/internal/multipart"
)

type LocationCreator interface {
	CreateLocation(ctx context.Context, req *locations.CreateLocationRequest) (*locations.Location, error)
}

// ImageUploader is the part of media.Service the gallery step uses.
type ImageUploader interface {
	UploadTracked(ctx context.Context, t *media.Tracker, file multipart.File, alt string, auth apiclient.AuthMode) (*media.Uploaded, error)
}

// AddLocationForm runs basics -> address -> categories -> media -> hours -> review.
type AddLocationForm struct {
	mu     sync.Mutex
	req    locations.CreateLocationRequest
	result *locations.Location

	creator  LocationCreator
	uploader ImageUploader
	uploads  media.Tracker
	wizard   *Wizard
}

func NewAddLocationForm(creator LocationCreator, uploader ImageUploader) *AddLocationForm {
	f := &AddLocationForm{
		creator:  creator,
		uploader: uploader,
		req:      locations.CreateLocationRequest{Privacy: locations.PrivacyPublic},
	}
	f.wizard = NewWizard([]Step{
		{Name: "basics", CanProceed: f.basicsReady},
		{Name: "address", CanProceed: f.addressReady},
		{Name: "categories", CanProceed: f.categoriesReady},
		{Name: "media", CanProceed: f.mediaReady},
		{Name: "hours", CanProceed: f.hoursReady},
		{Name: "review", CanProceed: f.reviewReady},
	}, f.submit, &f.uploads)
	return f
}

func (f *AddLocationForm) Wizard() *Wizard { return f.wizard }

// Update edits the draft request.
func (f *AddLocationForm) Update(edit func(*locations.CreateLocationRequest)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit(&f.req)
}

// Request returns a copy of the aggregated payload.
func (f *AddLocationForm) Request() *locations.CreateLocationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.req
	out.Categories = append([]string(nil), f.req.Categories...)
	out.Gallery = append([]locations.GalleryImage(nil), f.req.Gallery...)
	out.BusinessHours = append([]locations.BusinessHours(nil), f.req.BusinessHours...)
	return &out
}

func (f *AddLocationForm) Result() *locations.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Uploads exposes the in-flight gallery uploads.
func (f *AddLocationForm) Uploads() *media.Tracker { return &f.uploads }

// AddPhoto uploads a gallery image and appends it once stored. The first photo becomes
// the featured image. Submission is blocked while any photo is still uploading.
func (f *AddLocationForm) AddPhoto(ctx context.Context, file multipart.File, caption string) (*media.Uploaded, error) {
	up, err := f.uploader.UploadTracked(ctx, &f.uploads, file, caption, apiclient.AuthBearer)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.req.Gallery = append(f.req.Gallery, locations.GalleryImage{
		Image:   up.ID,
		Caption: strings.TrimSpace(caption),
		Order:   len(f.req.Gallery),
	})
	if f.req.FeaturedImage == "" {
		f.req.FeaturedImage = up.ID
	}
	return up, nil
}

// RemovePhoto drops a gallery image and renumbers the rest.
func (f *AddLocationForm) RemovePhoto(mediaID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.req.Gallery[:0]
	for _, g := range f.req.Gallery {
		if g.Image != mediaID {
			g.Order = len(kept)
			kept = append(kept, g)
		}
	}
	f.req.Gallery = kept
	if f.req.FeaturedImage == mediaID {
		f.req.FeaturedImage = ""
		if len(kept) > 0 {
			f.req.FeaturedImage = kept[0].Image
		}
	}
}

func (f *AddLocationForm) basicsReady() error {
	r := f.Request()
	if n := len(strings.TrimSpace(r.Name)); n < 2 || n > 100 {
		return &FieldError{Field: "name", Reason: "must be 2-100 characters"}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &FieldError{Field: "description", Reason: "is required"}
	}
	return nil
}

func (f *AddLocationForm) addressReady() error {
	r := f.Request()
	if err := utils.ValidateStruct(r.Address); err != nil {
		return &FieldError{Field: "address", Reason: err.Error()}
	}
	if r.Coordinates != nil {
		if err := utils.ValidateStruct(r.Coordinates); err != nil {
			return &FieldError{Field: "coordinates", Reason: err.Error()}
		}
	}
	return nil
}

func (f *AddLocationForm) categoriesReady() error {
	switch n := len(f.Request().Categories); {
	case n == 0:
		return &FieldError{Field: "categories", Reason: "pick at least one"}
	case n > 3:
		return &FieldError{Field: "categories", Reason: "pick at most three"}
	}
	return nil
}

func (f *AddLocationForm) mediaReady() error {
	if n := len(f.Request().Gallery); n > 20 {
		return &FieldError{Field: "photos", Reason: "at most 20 photos"}
	}
	return nil
}

func (f *AddLocationForm) hoursReady() error {
	seen := map[string]bool{}
	for _, h := range f.Request().BusinessHours {
		if err := utils.ValidateStruct(h); err != nil {
			return &FieldError{Field: "hours", Reason: err.Error()}
		}
		if seen[h.Day] {
			return &FieldError{Field: "hours", Reason: h.Day + " is listed twice"}
		}
		seen[h.Day] = true
	}
	return nil
}

func (f *AddLocationForm) reviewReady() error {
	switch f.Request().Privacy {
	case locations.PrivacyPublic, locations.PrivacyFollowers, locations.PrivacyPrivate:
		return nil
	}
	return &FieldError{Field: "privacy", Reason: "must be public, followers or private"}
}

func (f *AddLocationForm) submit(ctx context.Context) error {
	loc, err := f.creator.CreateLocation(ctx, f.Request())
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.result = loc
	f.mu.Unlock()
	return nil
}
