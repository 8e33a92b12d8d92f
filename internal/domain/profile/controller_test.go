package profile

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/scans"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/httpclient"
	"pet-guardian/internal/ports/geolocation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fakes
// -------------------------

type fakeAPI struct {
	mu       sync.Mutex
	pets     map[string]pets.PublicPet
	loadErr  error
	scanErr  error
	sendErr  error
	reports  map[string][]scans.Report
	messages []ContactMessage
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		pets: map[string]pets.PublicPet{
			"a": {ID: "a", Name: "Rex", Status: pets.StatusLost, Owner: pets.Owner{Name: "Ana"}},
			"b": {ID: "b", Name: "Milo", Status: pets.StatusSafe},
		},
		reports: map[string][]scans.Report{},
	}
}

func (f *fakeAPI) PublicPet(ctx context.Context, petID string) (pets.PublicPet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return pets.PublicPet{}, f.loadErr
	}
	p, ok := f.pets[petID]
	if !ok {
		return pets.PublicPet{}, &httpclient.HTTPError{StatusCode: http.StatusNotFound, Message: "Pet not found"}
	}
	return p, nil
}

func (f *fakeAPI) ReportScan(ctx context.Context, petID string, r scans.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return f.scanErr
	}
	f.reports[petID] = append(f.reports[petID], r)
	return nil
}

func (f *fakeAPI) SendContact(ctx context.Context, petID string, msg ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeAPI) reportCount(petID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports[petID])
}

// countingLocator cuenta cuántas veces se pidió permiso.
type countingLocator struct {
	mu    sync.Mutex
	calls int
	pos   geolocation.Position
	err   error
}

func (l *countingLocator) Locate(ctx context.Context) (geolocation.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.pos, l.err
}

func (l *countingLocator) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// -------------------------
// Load / scan capture
// -------------------------

func TestLoad_RecordsScanOncePerPet(t *testing.T) {
	api := newFakeAPI()
	loc := &countingLocator{pos: geolocation.Position{Latitude: 40.416775, Longitude: -3.70379}}
	c := NewController(api, loc, nil, "http://localhost:8080")

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Load(context.Background(), "a"))
	}
	c.Wait()

	assert.Equal(t, 1, loc.Calls())
	require.Equal(t, 1, api.reportCount("a"))
	assert.Equal(t, "40.416775, -3.703790", api.reports["a"][0].Address)

	v := c.View()
	assert.True(t, v.LocationRecorded)
	assert.Equal(t, "MISSING", v.Presentation.Label)
	assert.Equal(t, "http://localhost:8080/pet/a", v.ProfileURL)
}

func TestLoad_ChangingPetResetsGuard(t *testing.T) {
	api := newFakeAPI()
	loc := &countingLocator{pos: geolocation.Position{Latitude: 1, Longitude: 2}}
	c := NewController(api, loc, nil, "")

	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()
	require.NoError(t, c.Load(context.Background(), "b"))
	c.Wait()
	require.NoError(t, c.Load(context.Background(), "b"))
	c.Wait()

	assert.Equal(t, 1, api.reportCount("a"))
	assert.Equal(t, 1, api.reportCount("b"))
	assert.Equal(t, 2, loc.Calls())

	// volver a A es otra vista: nuevo intento
	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()
	assert.Equal(t, 2, api.reportCount("a"))
}

func TestLoad_DeniedIsSilentAndNotRetried(t *testing.T) {
	api := newFakeAPI()
	loc := &countingLocator{err: geolocation.ErrPermissionDenied}
	c := NewController(api, loc, nil, "")

	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()
	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()

	v := c.View()
	assert.Empty(t, v.Error)
	assert.NotNil(t, v.Pet)
	assert.False(t, v.LocationRecorded)
	assert.True(t, v.LocationAttempted)
	assert.Equal(t, 1, loc.Calls())
	assert.Zero(t, api.reportCount("a"))
}

func TestLoad_ReportFailureIsSilent(t *testing.T) {
	api := newFakeAPI()
	api.scanErr = errors.New("timeout")
	c := NewController(api, &countingLocator{}, nil, "")

	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()

	v := c.View()
	assert.Empty(t, v.Error)
	assert.False(t, v.LocationRecorded)
}

func TestLoad_Errors(t *testing.T) {
	api := newFakeAPI()
	loc := &countingLocator{}
	c := NewController(api, loc, nil, "")

	err := c.Load(context.Background(), "missing")
	assert.Equal(t, MsgPetNotFound, session.Message(err, ""))
	assert.Equal(t, MsgPetNotFound, c.View().Error)
	assert.Nil(t, c.View().Pet)

	api.loadErr = errors.New("dial tcp: refused")
	err = c.Load(context.Background(), "b")
	assert.Equal(t, MsgLoadFailed, session.Message(err, ""))

	c.Wait()
	assert.Zero(t, loc.Calls(), "no capture without a profile")
}

func TestLoad_DoesNotWaitForCapture(t *testing.T) {
	api := newFakeAPI()
	block := make(chan struct{})
	loc := locatorFunc(func(ctx context.Context) (geolocation.Position, error) {
		select {
		case <-block:
			return geolocation.Position{}, nil
		case <-ctx.Done():
			return geolocation.Position{}, geolocation.ErrUnavailable
		}
	})
	c := NewController(api, loc, nil, "")

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background(), "a") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Load blocked on geolocation")
	}

	c.Stop()
	close(block)
	assert.Zero(t, api.reportCount("a"))
}

type locatorFunc func(ctx context.Context) (geolocation.Position, error)

func (f locatorFunc) Locate(ctx context.Context) (geolocation.Position, error) { return f(ctx) }

// -------------------------
// Contact
// -------------------------

func TestSendContact(t *testing.T) {
	api := newFakeAPI()
	loc := &countingLocator{pos: geolocation.Position{Latitude: 10, Longitude: 20}}
	c := NewController(api, loc, nil, "")

	err := c.SendContact(context.Background(), ContactMessage{SenderName: "Leo", Message: "found"})
	assert.ErrorIs(t, err, ErrNoPetLoaded)

	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()

	err = c.SendContact(context.Background(), ContactMessage{SenderName: " ", Message: "hi"})
	assert.Equal(t, MsgContactIncomplete, session.Message(err, ""))

	require.NoError(t, c.SendContact(context.Background(), ContactMessage{SenderName: "Leo", Message: "Found him", ShareLocation: true}))
	lat := 1.5
	require.NoError(t, c.SendContact(context.Background(), ContactMessage{SenderName: "Leo", Message: "x", Latitude: &lat}))

	require.Len(t, api.messages, 2)
	require.NotNil(t, api.messages[0].Latitude)
	assert.Equal(t, 10.0, *api.messages[0].Latitude)
	assert.Nil(t, api.messages[1].Latitude, "coordinates dropped when not shared")

	api.sendErr = &httpclient.HTTPError{StatusCode: http.StatusInternalServerError, Message: "smtp down"}
	err = c.SendContact(context.Background(), ContactMessage{SenderName: "Leo", Message: "x"})
	assert.Equal(t, MsgContactFailed, session.Message(err, ""))
}

func TestSendContact_LocationFailure(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, &countingLocator{err: geolocation.ErrPermissionDenied}, nil, "")
	require.NoError(t, c.Load(context.Background(), "a"))
	c.Wait()

	err := c.SendContact(context.Background(), ContactMessage{SenderName: "Leo", Message: "x", ShareLocation: true})

	assert.Equal(t, MsgContactFailed, session.Message(err, ""))
	assert.Empty(t, api.messages)
}

// -------------------------
// Views
// -------------------------

func TestViews_SweepIdle(t *testing.T) {
	api := newFakeAPI()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	views := NewViews(api, func() geolocation.Locator { return &countingLocator{err: geolocation.ErrUnavailable} }, nil, "")
	views.now = func() time.Time { return now }

	require.NoError(t, views.For("v1").Load(context.Background(), "a"))
	now = now.Add(20 * time.Minute)
	require.NoError(t, views.For("v2").Load(context.Background(), "b"))

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, views.Sweep())
	assert.Equal(t, 1, views.Len())

	assert.Same(t, views.For("v2"), views.For("v2"))
	views.StopAll()
	assert.Zero(t, views.Len())
}
