package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/http/handlers"
)

func TestProfile(t *testing.T) {
	t.Parallel()

	s := &stubShift{
		profileFn: func(context.Context) (domain.Driver, error) {
			return domain.Driver{ID: "d1", Duty: domain.Duty{OnDuty: true}}, nil
		},
		updateProfileFn: func(_ context.Context, upd domain.ProfileUpdate) (domain.Driver, error) {
			require.Equal(t, "Dana", upd.Name)
			require.Equal(t, "KA-01", upd.VehicleNumber)
			return domain.Driver{ID: "d1", Name: upd.Name}, nil
		},
	}
	h, _ := newHandlers(handlers.Usecases{Shift: s})

	rr := do(t, h.Profile, http.MethodGet, "/driver/profile", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var d domain.Driver
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&d))
	require.True(t, d.Duty.OnDuty)

	rr = do(t, h.UpdateProfile, http.MethodPut, "/driver/profile", `{"name":"Dana","vehicleNumber":"KA-01"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"name":"Dana"`)
}

func TestClockIn_WithAndWithoutLocation(t *testing.T) {
	t.Parallel()

	var got []*domain.Location
	s := &stubShift{clockInFn: func(_ context.Context, loc *domain.Location) error {
		got = append(got, loc)
		return nil
	}}
	sink := &stubSink{}
	h, _ := newHandlers(handlers.Usecases{Shift: s, Location: sink})

	require.Equal(t, http.StatusNoContent, do(t, h.ClockIn, http.MethodPost, "/driver/clock-in", "").Code)
	require.Equal(t, http.StatusNoContent,
		do(t, h.ClockIn, http.MethodPost, "/driver/clock-in", `{"location":{"latitude":12.9,"longitude":77.6}}`).Code)

	require.Len(t, got, 2)
	require.Nil(t, got[0])
	require.InDelta(t, 12.9, got[1].Latitude, 1e-9)
	require.Len(t, sink.pushed, 1)
}

func TestDutyTransitions(t *testing.T) {
	t.Parallel()

	s := &stubShift{
		clockOutFn: func(context.Context) error { return nil },
		startBreakFn: func(context.Context) error {
			return &apperr.RemoteError{Op: "break in", Status: 400, Kind: apperr.ErrValidation, Message: "not on duty"}
		},
		endBreakFn: func(context.Context) error {
			return &apperr.RemoteError{Op: "break out", Status: 500, Kind: apperr.ErrServer}
		},
	}
	h, _ := newHandlers(handlers.Usecases{Shift: s})

	require.Equal(t, http.StatusNoContent, do(t, h.ClockOut, http.MethodPost, "/driver/clock-out", "").Code)

	rr := do(t, h.StartBreak, http.MethodPost, "/driver/break/start", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":"not on duty","kind":"validation_failed"}`, rr.Body.String())

	require.Equal(t, http.StatusBadGateway, do(t, h.EndBreak, http.MethodPost, "/driver/break/end", "").Code)
}

func TestPushLocation(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	h, _ := newHandlers(handlers.Usecases{Location: sink})

	rr := do(t, h.PushLocation, http.MethodPost, "/driver/location", `{"latitude":12.9,"longitude":77.6,"accuracy":5}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, sink.pushed, 1)

	rr = do(t, h.PushLocation, http.MethodPost, "/driver/location", `{"latitude":120,"longitude":77.6}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Len(t, sink.pushed, 1)
}
