package forms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/auth"
	"github.com/sacavia/sacavia-go/internal/locations"
	"github.com/sacavia/sacavia-go/internal/media"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	taken  map[string]bool
	signup *auth.SignupRequest
}

func (f *fakeRegistrar) CheckUsername(ctx context.Context, username string) (*auth.UsernameCheck, error) {
	if f.taken[username] {
		return &auth.UsernameCheck{Available: false, Suggestions: []string{username + "1"}}, nil
	}
	return &auth.UsernameCheck{Available: true}, nil
}

func (f *fakeRegistrar) CheckEmail(ctx context.Context, email string) (*auth.EmailCheck, error) {
	if f.taken[email] {
		return &auth.EmailCheck{Available: false}, nil
	}
	return &auth.EmailCheck{Available: true}, nil
}

func (f *fakeRegistrar) Signup(ctx context.Context, req *auth.SignupRequest) (*auth.AuthResponse, error) {
	f.signup = req
	return &auth.AuthResponse{Token: "tok", User: auth.User{ID: "u1", Username: req.Username}}, nil
}

func settle(t *testing.T, f *FieldValidator) FieldState {
	t.Helper()
	require.Eventually(t, func() bool { return f.State().Status != FieldChecking }, time.Second, 5*time.Millisecond)
	return f.State()
}

func TestSignupFormFlow(t *testing.T) {
	backend := &fakeRegistrar{taken: map[string]bool{"taken": true}}
	form := NewSignupForm(backend, 10*time.Millisecond, nil)
	defer form.Close()
	ctx := context.Background()
	w := form.Wizard()

	// account step
	form.Update(func(s *SignupFields) {
		s.Name = "Ada"
		s.Password = "password1"
		s.ConfirmPassword = "password2"
		s.AcceptTerms = true
	})
	form.Email.Input("ada@example.com")
	require.Equal(t, FieldValid, settle(t, form.Email).Status)

	_, err := w.Next(ctx)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "confirm password", fe.Field)

	form.Update(func(s *SignupFields) { s.ConfirmPassword = "password1" })
	_, err = w.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "username", w.Current().Name)

	// username step
	form.Username.Input("taken")
	st := settle(t, form.Username)
	require.Equal(t, FieldUnavailable, st.Status)
	require.Equal(t, []string{"taken1"}, st.Suggestions)
	_, err = w.Next(ctx)
	require.Error(t, err)

	form.Username.Input("ada_l")
	require.Equal(t, FieldValid, settle(t, form.Username).Status)
	_, err = w.Next(ctx)
	require.NoError(t, err)

	// profile step is optional
	_, err = w.Next(ctx)
	require.NoError(t, err)

	// interests
	_, err = w.Next(ctx)
	require.Error(t, err)
	form.Update(func(s *SignupFields) { s.Interests = []string{"coffee"} })
	submitted, err := w.Next(ctx)
	require.NoError(t, err)
	require.True(t, submitted)

	require.Equal(t, "ada@example.com", backend.signup.Email)
	require.Equal(t, "ada_l", backend.signup.Username)
	require.Equal(t, []string{"coffee"}, backend.signup.Interests)
	require.True(t, backend.signup.AcceptTerms)
	require.Equal(t, "u1", form.Result().User.ID)
}

func TestSignupFormRejectsBadEmailLocally(t *testing.T) {
	form := NewSignupForm(&fakeRegistrar{}, time.Hour, nil)
	defer form.Close()

	form.Email.Input("not-an-email")
	require.Equal(t, FieldInvalid, form.Email.State().Status)
	require.Equal(t, "must be a valid email", form.Email.State().Reason)
}

func TestCheckFailedKeepsServerMessage(t *testing.T) {
	st := checkFailed(&apiclient.APIError{Kind: apiclient.KindServer, Status: 400, Message: "username is reserved"})
	require.Equal(t, FieldInvalid, st.Status)
	require.Equal(t, "username is reserved", st.Reason)

	st = checkFailed(&apiclient.APIError{Kind: apiclient.KindNetwork, Message: "could not reach server"})
	require.Equal(t, "could not be checked, try again", st.Reason)
}

type fakeCreator struct{ got *locations.CreateLocationRequest }

func (f *fakeCreator) CreateLocation(ctx context.Context, req *locations.CreateLocationRequest) (*locations.Location, error) {
	f.got = req
	return &locations.Location{ID: "loc1", Name: req.Name}, nil
}

// blockingUploader holds each upload open until release is closed.
type blockingUploader struct {
	release chan struct{}
	fail    bool
	n       int
}

func (u *blockingUploader) UploadTracked(ctx context.Context, t *media.Tracker, file multipart.File, alt string, auth apiclient.AuthMode) (*media.Uploaded, error) {
	done := t.Begin()
	<-u.release
	if u.fail {
		err := errors.New("upload failed")
		done(err)
		return nil, err
	}
	done(nil)
	u.n++
	return &media.Uploaded{ID: "m" + string(rune('0'+u.n)), Filename: file.Filename}, nil
}

func fillLocation(form *AddLocationForm) {
	form.Update(func(r *locations.CreateLocationRequest) {
		r.Name = "Blue Bottle"
		r.Description = "Coffee"
		r.Address = locations.Address{City: "Oakland", Country: "US"}
		r.Categories = []string{"cafe"}
		r.BusinessHours = []locations.BusinessHours{{Day: "Monday", Open: "08:00", Close: "17:00"}}
	})
}

func TestAddLocationFormSubmitsAggregatedRequest(t *testing.T) {
	creator := &fakeCreator{}
	up := &blockingUploader{release: make(chan struct{})}
	close(up.release)
	form := NewAddLocationForm(creator, up)
	ctx := context.Background()

	_, err := form.Wizard().Next(ctx)
	require.Error(t, err, "basics are empty")

	fillLocation(form)
	_, err = form.AddPhoto(ctx, multipart.File{Filename: "a.jpg", MimeType: "image/jpeg", Data: []byte{1}}, " front ")
	require.NoError(t, err)
	_, err = form.AddPhoto(ctx, multipart.File{Filename: "b.jpg", MimeType: "image/jpeg", Data: []byte{2}}, "")
	require.NoError(t, err)

	var submitted bool
	for i := 0; i < form.Wizard().Len(); i++ {
		submitted, err = form.Wizard().Next(ctx)
		require.NoError(t, err, "step %d", i)
	}
	require.True(t, submitted)

	require.Equal(t, "Blue Bottle", creator.got.Name)
	require.Equal(t, locations.PrivacyPublic, creator.got.Privacy)
	require.Equal(t, "m1", creator.got.FeaturedImage)
	require.Equal(t, []locations.GalleryImage{
		{Image: "m1", Caption: "front", Order: 0},
		{Image: "m2", Order: 1},
	}, creator.got.Gallery)
	require.Equal(t, "loc1", form.Result().ID)
}

func TestAddLocationFormWaitsForUploads(t *testing.T) {
	creator := &fakeCreator{}
	up := &blockingUploader{release: make(chan struct{})}
	form := NewAddLocationForm(creator, up)
	fillLocation(form)
	ctx := context.Background()

	for i := 0; i < form.Wizard().Len()-1; i++ {
		_, err := form.Wizard().Next(ctx)
		require.NoError(t, err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := form.AddPhoto(ctx, multipart.File{Filename: "a.jpg", Data: []byte{1}}, "")
		errc <- err
	}()
	require.Eventually(t, func() bool { return form.Uploads().Pending() == 1 }, time.Second, 5*time.Millisecond)

	_, err := form.Wizard().Next(ctx)
	require.ErrorIs(t, err, ErrUploadsInFlight)
	require.Nil(t, creator.got)

	close(up.release)
	require.NoError(t, <-errc)

	submitted, err := form.Wizard().Next(ctx)
	require.NoError(t, err)
	require.True(t, submitted)
	require.Len(t, creator.got.Gallery, 1)
}

func TestAddLocationFormStepChecks(t *testing.T) {
	form := NewAddLocationForm(&fakeCreator{}, &blockingUploader{})
	fillLocation(form)

	form.Update(func(r *locations.CreateLocationRequest) { r.Categories = []string{"a", "b", "c", "d"} })
	require.Error(t, form.categoriesReady())

	form.Update(func(r *locations.CreateLocationRequest) { r.Coordinates = &locations.Coordinates{Latitude: 123} })
	require.Error(t, form.addressReady())

	form.Update(func(r *locations.CreateLocationRequest) {
		r.BusinessHours = append(r.BusinessHours, locations.BusinessHours{Day: "Monday", Closed: true})
	})
	require.EqualError(t, form.hoursReady(), "hours Monday is listed twice")

	form.Update(func(r *locations.CreateLocationRequest) { r.Privacy = "friends" })
	require.Error(t, form.reviewReady())
}

func TestRemovePhotoRenumbers(t *testing.T) {
	up := &blockingUploader{release: make(chan struct{})}
	close(up.release)
	form := NewAddLocationForm(&fakeCreator{}, up)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := form.AddPhoto(ctx, multipart.File{Filename: name, Data: []byte{1}}, "")
		require.NoError(t, err)
	}

	form.RemovePhoto("m1")
	req := form.Request()
	require.Equal(t, "m2", req.FeaturedImage)
	require.Equal(t, []locations.GalleryImage{{Image: "m2", Order: 0}, {Image: "m3", Order: 1}}, req.Gallery)
}
